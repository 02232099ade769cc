package privval

import (
	"fmt"
	"io/ioutil"

	"github.com/tendermint/tendermint/crypto"
	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/libs/tempfile"

	"highcourt/crypto/bls"
	"highcourt/crypto/threshold"
	"highcourt/types"
)

//-------------------------------------------------------------------------------

// FileJurorKey stores the immutable part of a juror identity.
type FileJurorKey struct {
	NodeID  types.NodeID   `json:"node_id"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	PrivKey crypto.PrivKey `json:"priv_key"`

	filePath string
}

// Save persists the FileJurorKey to its filePath.
func (key FileJurorKey) Save() {
	outFile := key.filePath
	if outFile == "" {
		panic("cannot save juror key: filePath not set")
	}

	jsonBytes, err := tmjson.MarshalIndent(key, "", "  ")
	if err != nil {
		panic(err)
	}
	err = tempfile.WriteFileAtomic(outFile, jsonBytes, 0600)
	if err != nil {
		panic(err)
	}
}

//-------------------------------------------------------------------------------

// FileJuror implements types.JurorSigner using a key persisted to disk.
// NOTE: the directory containing the filePath must already exist.
type FileJuror struct {
	Key FileJurorKey
}

var _ types.JurorSigner = (*FileJuror)(nil)

// NewFileJuror wraps the given key and path.
func NewFileJuror(privKey crypto.PrivKey, keyFilePath string) *FileJuror {
	return &FileJuror{
		Key: FileJurorKey{
			NodeID:   types.NodeIDFromPubKey(privKey.PubKey()),
			PubKey:   privKey.PubKey(),
			PrivKey:  privKey,
			filePath: keyFilePath,
		},
	}
}

// GenFileJurorWithSeedAndIdx 从主私钥的多项式份额派生juror私钥
// 同一(seed, threshold)下idx对应的私钥是确定的，本地集群初始化依赖这一点
func GenFileJurorWithSeedAndIdx(keyFilePath string, thresholdVal int, idx, seed int64) *FileJuror {
	// 集群主私钥
	primary := bls.GenPrivKeyWithSeed(seed)

	// 根据主私钥生成的随机多项式 用来派生各节点的私钥
	poly := threshold.Master(primary, thresholdVal, seed)

	priv, err := poly.GetValue(idx)
	if err != nil {
		panic(err)
	}
	return NewFileJuror(priv, keyFilePath)
}

// GenFileJuror generates a juror identity with a fresh random key,
// but does not call Save().
func GenFileJuror(keyFilePath string) *FileJuror {
	return NewFileJuror(bls.GenPrivKey(), keyFilePath)
}

// LoadFileJuror loads a FileJuror from the given path.
// Exits the process if the file is missing or corrupted.
func LoadFileJuror(keyFilePath string) *FileJuror {
	keyJSONBytes, err := ioutil.ReadFile(keyFilePath)
	if err != nil {
		tmos.Exit(err.Error())
	}
	key := FileJurorKey{}
	err = tmjson.Unmarshal(keyJSONBytes, &key)
	if err != nil {
		tmos.Exit(fmt.Sprintf("Error reading juror key from %v: %v\n", keyFilePath, err))
	}

	// overwrite pubkey and node id for convenience
	key.PubKey = key.PrivKey.PubKey()
	key.NodeID = types.NodeIDFromPubKey(key.PubKey)
	key.filePath = keyFilePath

	return &FileJuror{Key: key}
}

// LoadOrGenFileJuror loads a FileJuror from the given path
// or else generates a new one and saves it there.
func LoadOrGenFileJuror(keyFilePath string) *FileJuror {
	var fj *FileJuror
	if tmos.FileExists(keyFilePath) {
		fj = LoadFileJuror(keyFilePath)
	} else {
		fj = GenFileJuror(keyFilePath)
		fj.Save()
	}
	return fj
}

// NodeID returns the juror's node id.
func (fj *FileJuror) NodeID() types.NodeID {
	return fj.Key.NodeID
}

// GetPubKey returns the identity public key. Implements JurorSigner.
func (fj *FileJuror) GetPubKey() (crypto.PubKey, error) {
	return fj.Key.PubKey, nil
}

// SignVote signs the canonical representation of the vote, along with the
// engine id. Implements JurorSigner.
func (fj *FileJuror) SignVote(engineID string, vote *types.Vote) error {
	signBytes := types.VoteSignBytes(engineID, vote)

	sig, err := fj.Key.PrivKey.Sign(signBytes)
	if err != nil {
		return fmt.Errorf("error signing vote: %w", err)
	}
	vote.Signature = sig
	return nil
}

// Save persists the FileJuror to disk.
func (fj *FileJuror) Save() {
	fj.Key.Save()
}

// String returns a string representation of the FileJuror.
func (fj *FileJuror) String() string {
	return fmt.Sprintf("FileJuror{%v}", fj.Key.NodeID)
}
