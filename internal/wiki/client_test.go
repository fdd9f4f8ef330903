package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lore-engine/internal/httputil"
	"github.com/pdiddy/lore-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const urzaMarkup = "{{Infobox character\n|name=Urza\n|race=Human\n}}\n'''Urza''' was a [[Human|human]] [[artificer]] and a famous [[planeswalker]] from [[Dominaria]]."

// fakeWiki serves a two-page category listing and a handful of pages.
func fakeWiki(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "2", q.Get("formatversion"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("list") == "categorymembers" && q.Get("cmtitle") == "Category:Broken":
			w.WriteHeader(http.StatusNotFound)
		case q.Get("list") == "categorymembers" && q.Get("cmcontinue") == "":
			fmt.Fprint(w, `{"continue": {"cmcontinue": "page|2", "continue": "-||"},
				"query": {"categorymembers": [{"title": "Urza"}, {"title": "Category:Planeswalkers by color"}, {"title": "Karn"}]}}`)
		case q.Get("list") == "categorymembers":
			assert.Equal(t, "page|2", q.Get("cmcontinue"))
			fmt.Fprint(w, `{"query": {"categorymembers": [{"title": "Template:Infobox"}, {"title": "File:Urza.jpg"}, {"title": "Missing Person"}]}}`)
		case q.Get("titles") == "Urza":
			assert.Equal(t, "revisions|categories", q.Get("prop"))
			assert.Equal(t, "main", q.Get("rvslots"))
			fmt.Fprintf(w, `{"query": {"pages": [{"title": "Urza",
				"categories": [{"title": "Category:Planeswalker characters"}],
				"revisions": [{"slots": {"main": {"content": %q}}}]}]}}`, urzaMarkup)
		case q.Get("titles") == "Karn":
			fmt.Fprint(w, `{"query": {"pages": [{"title": "Karn",
				"revisions": [{"slots": {"main": {"content": "'''Karn''' is a silver golem planeswalker created by Urza."}}}]}]}}`)
		default:
			fmt.Fprintf(w, `{"query": {"pages": [{"title": %q, "missing": true}]}}`, q.Get("titles"))
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func testClient(ts *httptest.Server) *Client {
	return NewClient(ts.Client(), types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test-agent", MaxRetries: 1},
		APIURL:     ts.URL + "/api.php",
		BaseURL:    "https://mtg.wiki/",
	}, nil)
}

func TestCategoryMembersFollowsContinuation(t *testing.T) {
	ts, calls := fakeWiki(t)
	titles, err := testClient(ts).CategoryMembers(context.Background(), "Category:Planeswalker characters")
	require.NoError(t, err)

	assert.Equal(t, []string{"Urza", "Karn", "Missing Person"}, titles)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCategoryMembersError(t *testing.T) {
	ts, _ := fakeWiki(t)
	_, err := testClient(ts).CategoryMembers(context.Background(), "Category:Broken")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestPage(t *testing.T) {
	ts, _ := fakeWiki(t)
	c := testClient(ts)

	in, err := c.Page(context.Background(), "Urza")
	require.NoError(t, err)
	assert.Equal(t, "Urza", in.Title)
	assert.Equal(t, urzaMarkup, in.Markup)
	assert.Equal(t, []string{"Category:Planeswalker characters"}, in.Categories)

	_, err = c.Page(context.Background(), "Nobody Here")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		base, title, want string
	}{
		{"https://mtg.wiki", "Urza", "https://mtg.wiki/page/Urza"},
		{"https://mtg.wiki/", "Jace Beleren", "https://mtg.wiki/page/Jace_Beleren"},
		{"https://mtg.wiki", "Jhoira of the Ghitu", "https://mtg.wiki/page/Jhoira_of_the_Ghitu"},
		{"https://mtg.wiki", "Ob Nixilis?", "https://mtg.wiki/page/Ob_Nixilis%3F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageURL(tt.base, tt.title))
	}
}

func TestClientHonorsContext(t *testing.T) {
	ts, _ := fakeWiki(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(ts).Page(ctx, "Urza")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"query": {"categorymembers": [{"title": "Teferi"}]}}`)
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), types.FetchConfig{
		HTTPConfig: types.HTTPConfig{MaxRetries: 2},
		APIURL:     ts.URL,
	}, nil)
	titles, err := c.CategoryMembers(context.Background(), "Category:Characters")
	require.NoError(t, err)
	assert.Equal(t, []string{"Teferi"}, titles)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
