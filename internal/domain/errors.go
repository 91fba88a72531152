package domain

import "errors"

var (
	// ErrNoArticles reports a source that answered but produced nothing usable.
	ErrNoArticles = errors.New("no articles")
	// ErrEmptyQuery rejects a search without a query.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrUnauthorized marks a request that needs an identity and has none.
	ErrUnauthorized = errors.New("unauthorized")
)
