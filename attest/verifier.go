package attest

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/tendermint/tendermint/crypto"
)

// Verifier 硬件证明校验器的窄接口
// 判定payload上的签名是否出自注册的、未被篡改的身份密钥
type Verifier interface {
	Verify(pub crypto.PubKey, payload, sig []byte) bool
}

//----------------------------------------
// KeyVerifier

// KeyVerifier verifies against the node's registered identity key.
type KeyVerifier struct{}

var _ Verifier = KeyVerifier{}

func NewKeyVerifier() KeyVerifier {
	return KeyVerifier{}
}

func (KeyVerifier) Verify(pub crypto.PubKey, payload, sig []byte) bool {
	if pub == nil {
		return false
	}
	return pub.VerifySignature(payload, sig)
}

//----------------------------------------
// MockVerifier

// MockVerifier always answers with Result, for testing.
type MockVerifier struct {
	Result bool
}

var _ Verifier = MockVerifier{}

func (mv MockVerifier) Verify(crypto.PubKey, []byte, []byte) bool {
	return mv.Result
}

//----------------------------------------
// quotes

// QuoteVerifier 校验appeal阶段的硬件quote
// quote = HMAC-SHA256(rootKey, nodeID ":" nonce)，nonce绑定防重放
type QuoteVerifier struct {
	rootKey []byte
}

func NewQuoteVerifier(rootKey []byte) *QuoteVerifier {
	return &QuoteVerifier{rootKey: rootKey}
}

// MakeQuote 生成一个nodeID对nonce的quote，硬件守护进程侧使用
func (qv *QuoteVerifier) MakeQuote(nodeID string, nonce string) []byte {
	mac := hmac.New(sha256.New, qv.rootKey)
	mac.Write([]byte(nodeID))
	mac.Write([]byte(":"))
	mac.Write([]byte(nonce))
	return mac.Sum(nil)
}

// VerifyQuote checks the nonce-bound hardware quote.
func (qv *QuoteVerifier) VerifyQuote(nodeID string, nonce string, quote []byte) bool {
	return hmac.Equal(qv.MakeQuote(nodeID, nonce), quote)
}
