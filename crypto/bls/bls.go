package bls

import (
	"bytes"
	"fmt"

	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/tmhash"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing/bn256"
	sign "go.dedis.ch/kyber/v3/sign/bls"
)

const (
	PrivKeyName = "highcourt/PrivKeyBLS"
	PubKeyName  = "highcourt/PubKeyBLS"

	KeyType = "bls-bn256"
)

// 整个引擎共用一个pairing suite
var suite = bn256.NewSuite()

func init() {
	tmjson.RegisterType(PubKey{}, PubKeyName)
	tmjson.RegisterType(PrivKey{}, PrivKeyName)
}

// Suite exposes the pairing suite for the threshold package.
func Suite() *bn256.Suite {
	return suite
}

//-------------------------------------------------------------------------------

// PrivKey - bn256上的BLS私钥，实现tendermint的crypto.PrivKey
// 字节表示为scalar的MarshalBinary结果
type PrivKey []byte

var _ crypto.PrivKey = PrivKey{}

// GenPrivKey generates a new BLS private key from the suite's random stream.
func GenPrivKey() PrivKey {
	x, _ := sign.NewKeyPair(suite, suite.RandomStream())
	return PrivKeyFromScalar(x)
}

// GenPrivKeyWithSeed 根据种子确定性地生成私钥，仅用于测试和本地集群初始化
func GenPrivKeyWithSeed(seed int64) PrivKey {
	stream := suite.XOF([]byte(fmt.Sprintf("highcourt/bls/%d", seed)))
	x, _ := sign.NewKeyPair(suite, stream)
	return PrivKeyFromScalar(x)
}

// GenPrimaryKeyWithSeed 返回seed对应的主公钥
func GenPrimaryKeyWithSeed(seed int64) crypto.PubKey {
	return GenPrivKeyWithSeed(seed).PubKey()
}

// PrivKeyFromScalar wraps a kyber scalar into a PrivKey.
func PrivKeyFromScalar(x kyber.Scalar) PrivKey {
	bz, err := x.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return PrivKey(bz)
}

// Scalar returns the kyber scalar behind the key.
func (privKey PrivKey) Scalar() kyber.Scalar {
	x := suite.G2().Scalar()
	if err := x.UnmarshalBinary(privKey); err != nil {
		panic(fmt.Sprintf("corrupted bls private key: %v", err))
	}
	return x
}

func (privKey PrivKey) Bytes() []byte {
	return []byte(privKey)
}

// Sign produces a BLS signature on msg.
func (privKey PrivKey) Sign(msg []byte) ([]byte, error) {
	return sign.Sign(suite, privKey.Scalar(), msg)
}

func (privKey PrivKey) PubKey() crypto.PubKey {
	point := suite.G2().Point().Mul(privKey.Scalar(), nil)
	bz, err := point.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return PubKey(bz)
}

func (privKey PrivKey) Equals(other crypto.PrivKey) bool {
	if otherBLS, ok := other.(PrivKey); ok {
		return bytes.Equal(privKey, otherBLS)
	}
	return false
}

func (privKey PrivKey) Type() string {
	return KeyType
}

//-------------------------------------------------------------------------------

// PubKey - G2上的BLS公钥
type PubKey []byte

var _ crypto.PubKey = PubKey{}

// Address hashes the public key, truncated like the tendermint key types.
func (pubKey PubKey) Address() crypto.Address {
	return crypto.Address(tmhash.SumTruncated(pubKey))
}

func (pubKey PubKey) Bytes() []byte {
	return []byte(pubKey)
}

func (pubKey PubKey) point() (kyber.Point, error) {
	p := suite.G2().Point()
	if err := p.UnmarshalBinary(pubKey); err != nil {
		return nil, err
	}
	return p, nil
}

func (pubKey PubKey) VerifySignature(msg []byte, sig []byte) bool {
	p, err := pubKey.point()
	if err != nil {
		return false
	}
	return sign.Verify(suite, p, msg, sig) == nil
}

func (pubKey PubKey) Equals(other crypto.PubKey) bool {
	if otherBLS, ok := other.(PubKey); ok {
		return bytes.Equal(pubKey, otherBLS)
	}
	return false
}

func (pubKey PubKey) Type() string {
	return KeyType
}

func (pubKey PubKey) String() string {
	return fmt.Sprintf("PubKeyBLS{%X}", []byte(pubKey)[:8])
}

//-------------------------------------------------------------------------------

// AggregateSignatures 将多个BLS签名压缩成一个聚合签名
// 各签名可以对应不同的消息
func AggregateSignatures(sigs ...[]byte) ([]byte, error) {
	return sign.AggregateSignatures(suite, sigs...)
}

// BatchVerify 校验聚合签名，msgs与pubs按序一一对应
func BatchVerify(pubs []crypto.PubKey, msgs [][]byte, aggregated []byte) error {
	points := make([]kyber.Point, len(pubs))
	for i, pub := range pubs {
		blsPub, ok := pub.(PubKey)
		if !ok {
			return fmt.Errorf("pubkey #%d is not a bls key (%T)", i, pub)
		}
		p, err := blsPub.point()
		if err != nil {
			return fmt.Errorf("pubkey #%d: %w", i, err)
		}
		points[i] = p
	}
	return sign.BatchVerify(suite, points, msgs, aggregated)
}
