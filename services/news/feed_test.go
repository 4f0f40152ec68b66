package news

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type staticFetcher struct {
	body string
}

func (f *staticFetcher) Fetch(ctx context.Context, target string) *relay.Response {
	if f.body == "" {
		return nil
	}
	return &relay.Response{URL: target, ContentType: "application/rss+xml", Body: []byte(f.body)}
}

func rssDocument(count int) string {
	var items []string
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`<item>
			<title>Titre &amp; sous-titre %d</title>
			<link>https://example.org/%d</link>
			<guid>article-%d</guid>
			<description>Résumé   numéro %d</description>
			<pubDate>Tue, 12 Mar 2024 %02d:00:00 +0000</pubDate>
		</item>`, i, i, i, i, i))
	}
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Une</title>` +
		strings.Join(items, "") + `</channel></rss>`
}

func TestRSSFeedRefresh(t *testing.T) {
	store := NewStore(0)
	f := NewRSSFeed(zaptest.NewLogger(t), &staticFetcher{body: rssDocument(10)}, "lemonde", "https://example.org/rss", 0, store)

	f.Refresh(context.Background())
	articles := store.List()

	assert.Len(t, articles, 8)
	// Newest first.
	assert.Equal(t, "lemonde/article-7", articles[0].Name)
	assert.Equal(t, "Titre & sous-titre 7", articles[0].Title)
	assert.Equal(t, "Résumé numéro 7", articles[0].Description)
	assert.Equal(t, "https://example.org/7", articles[0].Link)
	assert.Equal(t, time.Date(2024, time.March, 12, 7, 0, 0, 0, time.UTC), articles[0].CreateTime.UTC())
}

func TestRSSFeedUnavailable(t *testing.T) {
	store := NewStore(0)
	NewRSSFeed(zaptest.NewLogger(t), &staticFetcher{}, "lemonde", "", 0, store).Refresh(context.Background())
	NewRSSFeed(zaptest.NewLogger(t), &staticFetcher{body: "not a feed"}, "lemonde", "", 0, store).Refresh(context.Background())
	assert.Empty(t, store.List())
}

type parseDescriptionTest struct {
	name   string
	desc   string
	result *Article
}

var parseDescriptionTests = []parseDescriptionTest{
	{
		"plain text",
		"  Le trafic reprend   progressivement. ",
		&Article{
			Description: "Le trafic reprend progressivement.",
		},
	},
	{
		"image and paragraph",
		`
			<img src='https://img.example.org/photo.jpg' alt='Hippodrome' width='460' height='259' />
			<p>Le Prix d'Amérique se court <b>dimanche</b> à Vincennes.</p>
		`,
		&Article{
			Image: &Image{
				Link:   "https://img.example.org/photo.jpg",
				Title:  "Hippodrome",
				Width:  460,
				Height: 259,
			},
			Description: "Le Prix d'Amérique se court dimanche à Vincennes.",
		},
	},
	{
		"bad dimensions",
		`<img src="a.png" title="t" width="wide"/>Texte`,
		&Article{
			Image: &Image{
				Link:  "a.png",
				Title: "t",
			},
			Description: "Texte",
		},
	},
}

func TestParseDescription(t *testing.T) {
	f := NewRSSFeed(zaptest.NewLogger(t), nil, "test", "", 0, nil)
	for _, tt := range parseDescriptionTests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.result, f.parseDescription(tt.desc))
		})
	}
}

func TestStoreKeepsNewestVersion(t *testing.T) {
	s := NewStore(2)
	created := time.Date(2024, time.March, 12, 8, 0, 0, 0, time.UTC)

	s.refreshArticles([]*Article{{Name: "a", Title: "v1", CreateTime: created}})
	s.refreshArticles([]*Article{{Name: "a", Title: "v2", CreateTime: created, UpdateTime: created.Add(time.Minute)}})
	s.refreshArticles([]*Article{{Name: "a", Title: "stale", CreateTime: created}})
	assert.Equal(t, "v2", s.List()[0].Title)

	s.refreshArticles([]*Article{
		{Name: "b", CreateTime: created.Add(time.Hour)},
		{Name: "c", CreateTime: created.Add(2 * time.Hour)},
	})
	list := s.List()
	assert.Len(t, list, 2)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
}
