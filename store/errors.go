package store

import "errors"

var (
	ErrNotFound = errors.New("record not found in store")

	// ErrSettlementMismatch - 已写入的settlement与重写内容不一致
	// 这是数据损坏，属于唯一需要operator介入的fatal情形
	ErrSettlementMismatch = errors.New("settlement record exists with different content")
)
