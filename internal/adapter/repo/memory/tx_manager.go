package memory

import "context"

// TxManager holds the store-wide transaction lock for the whole body, so a
// read-validate-write span is atomic against concurrent transactions. That is
// the in-memory stand-in for the row locks the SQL backend takes.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	return fn(ctx)
}
