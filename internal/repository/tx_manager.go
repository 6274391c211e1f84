package repository

import "context"

// トランザクション内で使う約束。
// refreshのローテーション（旧をRotated + 新をCreate）をまとめるのに使う。
type TxRepos interface {
	Sessions() SessionRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
