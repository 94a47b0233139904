package explorer

// Event is an input to [Controller.HandleEvent].
type Event interface {
	event()
}

// InitialLoad loads the active tab from the current location.
type InitialLoad struct{}

// PageSelected selects a page. Page is one-based, as shown in the page bar.
type PageSelected struct {
	Page int
}

// PageSizeChanged changes the page length of the active tab.
type PageSizeChanged struct {
	Rows int
}

// TabSwitched activates the tab with the given ID.
type TabSwitched struct {
	Tab string
}

// ViewportResized reports the width available to the page bar.
type ViewportResized struct {
	Width int
}

// Refreshed reloads the current page of the active tab, discarding any
// cached records.
type Refreshed struct{}

// TotalChanged reports a new record count for a tab.
type TotalChanged struct {
	Tab   string
	Total int
}

func (InitialLoad) event()     {}
func (PageSelected) event()    {}
func (PageSizeChanged) event() {}
func (TabSwitched) event()     {}
func (ViewportResized) event() {}
func (TotalChanged) event()    {}
func (Refreshed) event()       {}
