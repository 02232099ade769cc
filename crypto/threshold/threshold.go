package threshold

import (
	"errors"
	"fmt"

	"github.com/tendermint/tendermint/crypto"
	"go.dedis.ch/kyber/v3/share"

	"highcourt/crypto/bls"
)

// Poly - 以主私钥为secret的随机多项式
// 每个节点的身份私钥是多项式在自己编号处的取值，
// 同一(seed, threshold)下生成的份额完全可复现
type Poly struct {
	poly *share.PriPoly
}

// Master builds the secret polynomial for a cluster of signers.
// primary必须是bls.PrivKey，多项式的其余系数由seed确定
func Master(primary crypto.PrivKey, t int, seed int64) *Poly {
	blsPriv, ok := primary.(bls.PrivKey)
	if !ok {
		panic(fmt.Sprintf("threshold.Master expects a bls key, got %T", primary))
	}
	stream := bls.Suite().XOF([]byte(fmt.Sprintf("highcourt/threshold/%d", seed)))
	return &Poly{
		poly: share.NewPriPoly(bls.Suite().G2(), t, blsPriv.Scalar(), stream),
	}
}

// GetValue returns the private key share for the signer at idx.
func (p *Poly) GetValue(idx int64) (crypto.PrivKey, error) {
	if idx < 0 {
		return nil, errors.New("negative share index")
	}
	sh := p.poly.Eval(int(idx))
	return bls.PrivKeyFromScalar(sh.V), nil
}

// Threshold returns the reconstruction threshold of the polynomial.
func (p *Poly) Threshold() int {
	return p.poly.Threshold()
}
