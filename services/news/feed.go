package news

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rmrobinson/kiosk/lib/htmltext"
	"github.com/rmrobinson/kiosk/lib/relay"
	"go.uber.org/zap"
)

const defaultArticleLimit = 8

// Fetcher retrieves an upstream document.
type Fetcher interface {
	Fetch(ctx context.Context, target string) *relay.Response
}

// RSSFeed is a headline feed read from an RSS or Atom document.
type RSSFeed struct {
	logger  *zap.Logger
	fetcher Fetcher
	source  string
	path    string
	limit   int

	store *Store
}

// NewRSSFeed creates a new feed reading path. Only the first limit items are kept.
func NewRSSFeed(logger *zap.Logger, fetcher Fetcher, source string, path string, limit int, store *Store) *RSSFeed {
	if limit <= 0 {
		limit = defaultArticleLimit
	}
	return &RSSFeed{
		logger:  logger,
		fetcher: fetcher,
		source:  source,
		path:    path,
		limit:   limit,
		store:   store,
	}
}

// Refresh retrieves the feed and merges its articles into the store.
func (f *RSSFeed) Refresh(ctx context.Context) {
	f.logger.Debug("refreshing data")

	resp := f.fetcher.Fetch(ctx, f.path)
	if resp == nil {
		return
	}

	fp := gofeed.NewParser()
	feed, err := fp.ParseString(resp.Text())
	if err != nil {
		f.logger.Warn("error parsing feed",
			zap.Error(err),
		)
		return
	}

	f.store.refreshArticles(f.parseFeed(feed))
}

func (f *RSSFeed) parseFeed(feed *gofeed.Feed) []*Article {
	var articles []*Article

	for _, item := range feed.Items {
		if len(articles) >= f.limit {
			break
		}

		// This creates the article, fills in description and an image (if present)
		article := f.parseDescription(item.Description)

		id := item.GUID
		if id == "" {
			id = item.Link
		}
		article.Name = f.source + "/" + id
		article.Source = f.source
		article.Title = htmltext.Clean(item.Title)
		article.Link = item.Link

		if item.PublishedParsed != nil {
			article.CreateTime = *item.PublishedParsed
		} else {
			article.CreateTime = time.Now()
		}
		if item.UpdatedParsed != nil {
			article.UpdateTime = *item.UpdatedParsed
		}

		for _, category := range item.Categories {
			article.Categories = append(article.Categories, category)
		}
		if article.Image == nil && item.Image != nil && item.Image.URL != "" {
			article.Image = &Image{
				Link:  item.Image.URL,
				Title: item.Image.Title,
			}
		}

		articles = append(articles, article)
	}

	return articles
}

// parseDescription extracts the text and leading image of an item description.
// Descriptions are either plain text or an HTML fragment with an <img> and a <p>.
func (f *RSSFeed) parseDescription(desc string) *Article {
	article := &Article{}
	desc = strings.TrimSpace(desc)
	if !strings.Contains(desc, "<") {
		article.Description = htmltext.Clean(desc)
		return article
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		f.logger.Warn("error parsing description",
			zap.Error(err),
		)
		article.Description = htmltext.Clean(desc)
		return article
	}

	if p := doc.Find("p").First(); p.Length() > 0 {
		article.Description = htmltext.Clean(p.Text())
	} else {
		article.Description = htmltext.Clean(doc.Text())
	}

	if img := doc.Find("img").First(); img.Length() > 0 {
		src, _ := img.Attr("src")
		article.Image = &Image{
			Link:  src,
			Title: img.AttrOr("title", img.AttrOr("alt", "")),
		}
		article.Image.Width = f.dimension(img.AttrOr("width", ""))
		article.Image.Height = f.dimension(img.AttrOr("height", ""))
	}

	return article
}

func (f *RSSFeed) dimension(val string) int {
	if val == "" {
		return 0
	}
	d, err := strconv.Atoi(val)
	if err != nil {
		f.logger.Warn("error parsing image dimension",
			zap.String("value", val),
			zap.Error(err),
		)
		return 0
	}
	return d
}
