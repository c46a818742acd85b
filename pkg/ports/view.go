package ports

// TabView is the presentation consumer for a single tab. The orchestrator
// notifies it strictly in the order loading -> (update | error), at most
// once per tab per execution. SetDisabled is used when a tab is skipped by
// cancellation.
type TabView interface {
	SetLoading(loading bool)
	Update(data interface{})
	SetError(message string)
	SetDisabled(disabled bool)
}
