package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

const (
	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultNodeKeyName  = "node_key.json"
	defaultJurorKeyName = "juror_key.json"
)

const DefaultLogLevel = "info"

// Config 汇总引擎全部可调参数
// UI里出现的常量（7人陪审团、4小时窗口、30%罚没等）一律放到这里，
// 引擎本身不写死任何阈值
type Config struct {
	BaseConfig `mapstructure:",squash"`

	Selection  *SelectionConfig  `mapstructure:"selection"`
	Dispute    *DisputeConfig    `mapstructure:"dispute"`
	Settlement *SettlementConfig `mapstructure:"settlement"`
	Appeal     *AppealConfig     `mapstructure:"appeal"`
	RPC        *RPCConfig        `mapstructure:"rpc"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseConfig: DefaultBaseConfig(),
		Selection:  DefaultSelectionConfig(),
		Dispute:    DefaultDisputeConfig(),
		Settlement: DefaultSettlementConfig(),
		Appeal:     DefaultAppealConfig(),
		RPC:        DefaultRPCConfig(),
	}
}

// TestConfig 返回适合单元测试的配置 - 短窗口、低阈值
func TestConfig() *Config {
	cfg := DefaultConfig()
	cfg.EngineID = "highcourt-test"
	cfg.Selection.EpochInterval = 100 * time.Millisecond
	cfg.Selection.EligibilityReputation = 500
	cfg.Selection.EligibilityBond = 1000
	cfg.Dispute.VoteWindow = 200 * time.Millisecond
	cfg.Settlement.PayoutTimeout = 50 * time.Millisecond
	cfg.Settlement.PayoutBackoff = 10 * time.Millisecond
	cfg.Settlement.RetryInterval = 100 * time.Millisecond
	return cfg
}

func (cfg *Config) ValidateBasic() error {
	if err := cfg.Selection.ValidateBasic(); err != nil {
		return fmt.Errorf("selection config: %w", err)
	}
	if err := cfg.Dispute.ValidateBasic(cfg.Selection.PanelSize); err != nil {
		return fmt.Errorf("dispute config: %w", err)
	}
	if err := cfg.Settlement.ValidateBasic(); err != nil {
		return fmt.Errorf("settlement config: %w", err)
	}
	if err := cfg.Appeal.ValidateBasic(); err != nil {
		return fmt.Errorf("appeal config: %w", err)
	}
	return nil
}

func (cfg *Config) SetRoot(root string) *Config {
	cfg.RootDir = root
	return cfg
}

//-----------------------------------------------------------------------------

type BaseConfig struct {
	// 引擎实例标识，进入投票签名载荷，防止跨网络重放
	EngineID string `mapstructure:"engine_id"`
	Moniker  string `mapstructure:"moniker"`

	RootDir string `mapstructure:"home"`
	DBDir   string `mapstructure:"db_dir"`

	LogLevel string `mapstructure:"log_level"`
}

func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		EngineID: "highcourt-1",
		Moniker:  "anonymous",
		DBDir:    defaultDataDir,
		LogLevel: "info",
	}
}

func (cfg BaseConfig) NodeKeyFile() string {
	return rootify(filepath.Join(defaultConfigDir, defaultNodeKeyName), cfg.RootDir)
}

func (cfg BaseConfig) JurorKeyFile() string {
	return rootify(filepath.Join(defaultConfigDir, defaultJurorKeyName), cfg.RootDir)
}

func (cfg BaseConfig) DBPath() string {
	return rootify(cfg.DBDir, cfg.RootDir)
}

//-----------------------------------------------------------------------------

// SelectionConfig 抽签相关参数
type SelectionConfig struct {
	PanelSize             int           `mapstructure:"panel_size"`
	EligibilityReputation int64         `mapstructure:"eligibility_reputation"`
	EligibilityBond       int64         `mapstructure:"eligibility_bond"`
	EpochInterval         time.Duration `mapstructure:"epoch_interval"`
}

func DefaultSelectionConfig() *SelectionConfig {
	return &SelectionConfig{
		PanelSize:             7,
		EligibilityReputation: 950,
		EligibilityBond:       2_000_000,
		EpochInterval:         10 * time.Minute,
	}
}

func (cfg *SelectionConfig) ValidateBasic() error {
	if cfg.PanelSize <= 0 {
		return errors.New("panel_size must be positive")
	}
	if cfg.EligibilityReputation < 0 || cfg.EligibilityBond < 0 {
		return errors.New("eligibility thresholds must be non-negative")
	}
	if cfg.EpochInterval <= 0 {
		return errors.New("epoch_interval must be positive")
	}
	return nil
}

//-----------------------------------------------------------------------------

// DisputeConfig 争议会话参数
type DisputeConfig struct {
	// 投票窗口，超时后无论是否集齐选票都进入TALLYING
	VoteWindow time.Duration `mapstructure:"vote_window"`
	// 自动裁决所需的最少有效票数，低于该值产生NO_QUORUM
	QuorumMin int `mapstructure:"quorum_min"`
}

func DefaultDisputeConfig() *DisputeConfig {
	return &DisputeConfig{
		VoteWindow: 4 * time.Hour,
		QuorumMin:  4,
	}
}

func (cfg *DisputeConfig) ValidateBasic(panelSize int) error {
	if cfg.VoteWindow <= 0 {
		return errors.New("vote_window must be positive")
	}
	if cfg.QuorumMin <= 0 || cfg.QuorumMin > panelSize {
		return fmt.Errorf("quorum_min must be in [1, %d]", panelSize)
	}
	// 少数派自动裁决是被禁止的
	if cfg.QuorumMin < panelSize/2+1 {
		return fmt.Errorf("quorum_min %d would allow a minority of the %d-seat panel to decide", cfg.QuorumMin, panelSize)
	}
	return nil
}

//-----------------------------------------------------------------------------

// SettlementConfig 经济清算参数
// 罚没曲线在mock稿里前后不一致（30%/50%/10%），这里作为唯一权威来源
type SettlementConfig struct {
	// subject的声誉调整
	SubjectRepPenalty int64 `mapstructure:"subject_rep_penalty"`
	SubjectRepReward  int64 `mapstructure:"subject_rep_reward"`
	// adverse结果下subject bond的罚没比例，basis points
	SlashRateBps int64 `mapstructure:"slash_rate_bps"`

	// 少数派陪审员的bond罚没比例，basis points
	DissentSlashBps int64 `mapstructure:"dissent_slash_bps"`
	// 逾期未投票的固定声誉惩罚
	NonResponsePenalty int64 `mapstructure:"non_response_penalty"`
	// 多数派瓜分罚没池的比例，剩余部分记为treasury burn
	SlashRewardBps int64 `mapstructure:"slash_reward_bps"`

	// payment rail调用的超时与重试
	PayoutTimeout time.Duration `mapstructure:"payout_timeout"`
	PayoutRetries int           `mapstructure:"payout_retries"`
	PayoutBackoff time.Duration `mapstructure:"payout_backoff"`
	// PAYOUT_PENDING记录的异步重试周期
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

func DefaultSettlementConfig() *SettlementConfig {
	return &SettlementConfig{
		SubjectRepPenalty:  100,
		SubjectRepReward:   25,
		SlashRateBps:       3000,
		DissentSlashBps:    3000,
		NonResponsePenalty: 50,
		SlashRewardBps:     5000,
		PayoutTimeout:      10 * time.Second,
		PayoutRetries:      3,
		PayoutBackoff:      2 * time.Second,
		RetryInterval:      30 * time.Second,
	}
}

func (cfg *SettlementConfig) ValidateBasic() error {
	if cfg.SlashRateBps < 0 || cfg.SlashRateBps > 10_000 {
		return errors.New("slash_rate_bps must be in [0, 10000]")
	}
	if cfg.DissentSlashBps < 0 || cfg.DissentSlashBps > 10_000 {
		return errors.New("dissent_slash_bps must be in [0, 10000]")
	}
	if cfg.SlashRewardBps < 0 || cfg.SlashRewardBps > 10_000 {
		return errors.New("slash_reward_bps must be in [0, 10000]")
	}
	if cfg.NonResponsePenalty < 0 || cfg.SubjectRepPenalty < 0 || cfg.SubjectRepReward < 0 {
		return errors.New("reputation deltas must be configured as non-negative magnitudes")
	}
	if cfg.PayoutTimeout <= 0 || cfg.PayoutRetries < 0 || cfg.PayoutBackoff < 0 {
		return errors.New("invalid payout retry policy")
	}
	return nil
}

//-----------------------------------------------------------------------------

// AppealConfig 申诉通道参数
type AppealConfig struct {
	// 开启申诉需要的押金
	DepositSats int64 `mapstructure:"deposit_sats"`
	// attestation挑战nonce的有效期
	NonceTTL time.Duration `mapstructure:"nonce_ttl"`
	// 硬件quote校验的根密钥，和attestation守护进程共享
	AttestationRoot string `mapstructure:"attestation_root"`
}

func DefaultAppealConfig() *AppealConfig {
	return &AppealConfig{
		DepositSats:     1_000_000,
		NonceTTL:        10 * time.Minute,
		AttestationRoot: "highcourt-dev-attestation-root",
	}
}

func (cfg *AppealConfig) ValidateBasic() error {
	if cfg.DepositSats < 0 {
		return errors.New("deposit_sats must be non-negative")
	}
	if cfg.NonceTTL <= 0 {
		return errors.New("nonce_ttl must be positive")
	}
	if cfg.AttestationRoot == "" {
		return errors.New("attestation_root must be configured")
	}
	return nil
}

//-----------------------------------------------------------------------------

type RPCConfig struct {
	ListenAddress      string `mapstructure:"laddr"`
	MaxOpenConnections int    `mapstructure:"max_open_connections"`
}

func DefaultRPCConfig() *RPCConfig {
	return &RPCConfig{
		ListenAddress:      "tcp://127.0.0.1:26670",
		MaxOpenConnections: 900,
	}
}

//-----------------------------------------------------------------------------

func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
