package model

// ViewStore persists the view under a fixed key. LoadView returns
// ErrNoSavedView when the key is absent and an error wrapping ErrCorruptView
// when the stored payload is unusable.
type ViewStore interface {
	LoadView(key string) (ViewState, error)
	SaveView(key string, v ViewState) error
}

// RenderLog keeps the history of finished renders.
type RenderLog interface {
	RecordRender(rec RenderRecord) error
	RecentRenders(limit int) ([]RenderRecord, error)
}

// Store is the full persistence contract used by the binaries.
type Store interface {
	ViewStore
	RenderLog
}
