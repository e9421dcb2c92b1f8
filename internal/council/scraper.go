package council

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Default selectors for the council's bin-collection page: an address
// autocomplete input, its suggestion list, and the results container the
// widget fills in after an address is chosen.
const (
	defaultSearchSelector  = `#address-search`
	defaultSuggestSelector = `#address-search-suggestions li`
	defaultResultsSelector = `#bin-collection-results`
)

const defaultTimeout = 15 * time.Second

// Scraper drives a headless browser through the council calendar page.
// One Lookup call is one browser session; the browser is always torn down
// before the call returns, whatever the outcome.
type Scraper struct {
	CalendarURL string

	// Selector overrides; empty fields use the defaults above.
	SearchSelector  string
	SuggestSelector string
	ResultsSelector string

	// Timeout bounds the whole session, navigation included. Zero means
	// defaultTimeout. A stuck page surfaces as an error here rather than
	// wedging the caller.
	Timeout time.Duration
}

var _ DateSource = (*Scraper)(nil)

// LookupCollectionDates submits the address to the calendar's autocomplete,
// accepts the first suggestion, waits for results to render and extracts
// per-bin dates from them. Navigation and wait timeouts are returned as
// errors; a rendered-but-unparseable results widget is not an error and
// comes back with an empty DatesByBin.
func (s *Scraper) LookupCollectionDates(ctx context.Context, address string) (LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	search := orDefault(s.SearchSelector, defaultSearchSelector)
	suggest := orDefault(s.SuggestSelector, defaultSuggestSelector)
	results := orDefault(s.ResultsSelector, defaultResultsSelector)

	var rawText, rawHTML string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.CalendarURL),
		chromedp.WaitVisible(search, chromedp.ByQuery),
		chromedp.SendKeys(search, address, chromedp.ByQuery),
		// Wait for the suggestion list to populate instead of sleeping a
		// fixed debounce; the overall timeout bounds this wait.
		chromedp.WaitVisible(suggest, chromedp.ByQuery),
		chromedp.SendKeys(search, kb.ArrowDown+kb.Enter, chromedp.ByQuery),
		chromedp.WaitVisible(results, chromedp.ByQuery),
		chromedp.Text(results, &rawText, chromedp.ByQuery),
		chromedp.OuterHTML(results, &rawHTML, chromedp.ByQuery),
	)
	if err != nil {
		return LookupResult{}, fmt.Errorf("council lookup for %q: %w", address, err)
	}

	return LookupResult{
		RawText:    rawText,
		DatesByBin: ParseCalendar(rawHTML),
	}, nil
}

func (s *Scraper) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultTimeout
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
