package store

import (
	"bytes"
	"fmt"
	"strconv"

	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"
	leveldb "github.com/tendermint/tm-db/goleveldb"

	"highcourt/types"
)

const (
	prefixNode          = "node/"
	prefixEpoch         = "epoch/"
	prefixAssignment    = "assignment/"
	prefixDispute       = "dispute/"
	prefixVotes         = "votes/"
	prefixSettlement    = "settlement/"
	prefixEscalation    = "escalation/"
	prefixPayoutPending = "payout_pending/"

	keyLatestEpoch = "meta/latest_epoch"
)

// NewKVStore opens a goleveldb-backed store under dir.
func NewKVStore(name, dir string, logger log.Logger) (*KVStore, error) {
	levelDB, err := leveldb.NewDB(name, dir)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return NewKVStoreWithDB(levelDB, logger), nil
}

// NewKVStoreWithDB 用任意tm-db后端构造store，测试传memdb
func NewKVStoreWithDB(kvdb tmdb.DB, logger log.Logger) *KVStore {
	return &KVStore{kvDB: kvdb, logger: logger}
}

type KVStore struct {
	kvDB tmdb.DB

	logger log.Logger
}

var _ Store = (*KVStore)(nil)

//----------------------------------------
// generic helpers

func (kv *KVStore) set(key string, v interface{}) error {
	bz, err := tmjson.Marshal(v)
	if err != nil {
		return err
	}
	return kv.kvDB.SetSync([]byte(key), bz)
}

func (kv *KVStore) get(key string, v interface{}) error {
	bz, err := kv.kvDB.Get([]byte(key))
	if err != nil {
		return err
	}
	if bz == nil {
		return ErrNotFound
	}
	return tmjson.Unmarshal(bz, v)
}

// listKeys 返回prefix下的全部key后缀
func (kv *KVStore) listKeys(prefix string) ([]string, error) {
	ite, err := tmdb.IteratePrefix(kv.kvDB, []byte(prefix))
	if err != nil {
		return nil, err
	}
	defer ite.Close()

	keys := []string{}
	for ; ite.Valid(); ite.Next() {
		keys = append(keys, string(ite.Key())[len(prefix):])
	}
	return keys, ite.Error()
}

//----------------------------------------
// registry

func (kv *KVStore) SaveNode(node *types.Node) error {
	return kv.set(prefixNode+string(node.ID), node)
}

func (kv *KVStore) LoadNodes() ([]*types.Node, error) {
	ite, err := tmdb.IteratePrefix(kv.kvDB, []byte(prefixNode))
	if err != nil {
		return nil, err
	}
	defer ite.Close()

	nodes := []*types.Node{}
	for ; ite.Valid(); ite.Next() {
		node := new(types.Node)
		if err := tmjson.Unmarshal(ite.Value(), node); err != nil {
			return nil, fmt.Errorf("corrupted node record %s: %w", ite.Key(), err)
		}
		nodes = append(nodes, node)
	}
	return nodes, ite.Error()
}

//----------------------------------------
// epochs

func (kv *KVStore) SaveEpoch(epoch *types.Epoch) error {
	if err := kv.set(epochKey(epoch.Seq), epoch); err != nil {
		return err
	}
	return kv.kvDB.SetSync([]byte(keyLatestEpoch), []byte(strconv.FormatInt(epoch.Seq, 10)))
}

func (kv *KVStore) LoadEpoch(seq int64) (*types.Epoch, error) {
	epoch := new(types.Epoch)
	if err := kv.get(epochKey(seq), epoch); err != nil {
		return nil, err
	}
	return epoch, nil
}

// LatestEpochSeq returns the newest drawn epoch, ErrNotFound before any draw.
func (kv *KVStore) LatestEpochSeq() (int64, error) {
	bz, err := kv.kvDB.Get([]byte(keyLatestEpoch))
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 0, ErrNotFound
	}
	return strconv.ParseInt(string(bz), 10, 64)
}

func (kv *KVStore) SaveAssignment(assignment *types.JurorAssignment) error {
	return kv.set(prefixAssignment+assignment.ID, assignment)
}

func (kv *KVStore) LoadAssignment(id string) (*types.JurorAssignment, error) {
	assignment := new(types.JurorAssignment)
	if err := kv.get(prefixAssignment+id, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

//----------------------------------------
// disputes

func (kv *KVStore) SaveDispute(dispute *types.Dispute) error {
	return kv.set(prefixDispute+dispute.CaseID, dispute)
}

func (kv *KVStore) LoadDispute(caseID string) (*types.Dispute, error) {
	dispute := new(types.Dispute)
	if err := kv.get(prefixDispute+caseID, dispute); err != nil {
		return nil, err
	}
	return dispute, nil
}

// LoadOpenDisputes 返回所有未到FINALIZED的dispute，重启恢复session用
func (kv *KVStore) LoadOpenDisputes() ([]*types.Dispute, error) {
	caseIDs, err := kv.listKeys(prefixDispute)
	if err != nil {
		return nil, err
	}
	open := []*types.Dispute{}
	for _, caseID := range caseIDs {
		d, err := kv.LoadDispute(caseID)
		if err != nil {
			return nil, err
		}
		if d.Phase != types.DisputeFinalized {
			open = append(open, d)
		}
	}
	return open, nil
}

func (kv *KVStore) SaveVoteLog(caseID string, votes []*types.Vote) error {
	return kv.set(prefixVotes+caseID, votes)
}

func (kv *KVStore) LoadVoteLog(caseID string) ([]*types.Vote, error) {
	votes := []*types.Vote{}
	if err := kv.get(prefixVotes+caseID, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

//----------------------------------------
// settlements

// SaveSettlement writes the record exactly once.
// 重复写入相同内容是no-op；内容不一致说明数据损坏，返回ErrSettlementMismatch
func (kv *KVStore) SaveSettlement(record *types.SettlementRecord) error {
	key := []byte(prefixSettlement + record.DisputeID)
	existing, err := kv.kvDB.Get(key)
	if err != nil {
		return err
	}
	if existing != nil {
		if !bytes.Equal(existing, record.Bytes()) {
			kv.logger.Error("settlement record mismatch, operator intervention required",
				"dispute", record.DisputeID)
			return ErrSettlementMismatch
		}
		return nil
	}
	return kv.kvDB.SetSync(key, record.Bytes())
}

func (kv *KVStore) LoadSettlement(disputeID string) (*types.SettlementRecord, error) {
	record := new(types.SettlementRecord)
	if err := kv.get(prefixSettlement+disputeID, record); err != nil {
		return nil, err
	}
	return record, nil
}

//----------------------------------------
// escalation queue

func (kv *KVStore) PushEscalation(caseID string) error {
	return kv.kvDB.SetSync([]byte(prefixEscalation+caseID), []byte{0x01})
}

func (kv *KVStore) PendingEscalations() ([]string, error) {
	return kv.listKeys(prefixEscalation)
}

func (kv *KVStore) PopEscalation(caseID string) error {
	return kv.kvDB.DeleteSync([]byte(prefixEscalation + caseID))
}

//----------------------------------------
// payout retry index

func (kv *KVStore) MarkPayoutPending(disputeID string) error {
	return kv.kvDB.SetSync([]byte(prefixPayoutPending+disputeID), []byte{0x01})
}

func (kv *KVStore) PendingPayouts() ([]string, error) {
	return kv.listKeys(prefixPayoutPending)
}

// ResolvePayout 更新settlement里的payout字段并清理pending索引
// 注意：payout状态不属于审计不可变部分，记录主体不会被改写
func (kv *KVStore) ResolvePayout(disputeID string, ref string, status types.PayoutStatus) error {
	record, err := kv.LoadSettlement(disputeID)
	if err != nil {
		return err
	}
	record.PayoutRef = ref
	record.PayoutStatus = status
	key := []byte(prefixSettlement + disputeID)
	if err := kv.kvDB.SetSync(key, record.Bytes()); err != nil {
		return err
	}
	if status != types.PayoutPending {
		return kv.kvDB.DeleteSync([]byte(prefixPayoutPending + disputeID))
	}
	return nil
}

func (kv *KVStore) Close() error {
	return kv.kvDB.Close()
}

func epochKey(seq int64) string {
	return fmt.Sprintf("%s%020d", prefixEpoch, seq)
}
