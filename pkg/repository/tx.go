package repository

import "github.com/jmoiron/sqlx"

// Tx holds repositories bound to a single transaction, see Repositories.InTx
type Tx struct {
	Feed         *FeedRepository
	Entry        *EntryRepository
	Subscription *SubscriptionRepository
	ReadMarker   *ReadMarkerRepository
	User         *UserRepository
}

func newTx(tx *sqlx.Tx) *Tx {
	return &Tx{
		Feed:         NewFeedRepository(tx),
		Entry:        NewEntryRepository(tx),
		Subscription: NewSubscriptionRepository(tx),
		ReadMarker:   NewReadMarkerRepository(tx),
		User:         NewUserRepository(tx),
	}
}
