package news

import (
	"sort"
	"sync"
	"time"
)

// Image is an illustration attached to an article.
type Image struct {
	Link   string `json:"link"`
	Title  string `json:"title,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Article is a single headline.
type Article struct {
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Image       *Image    `json:"image,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	CreateTime  time.Time `json:"create_time"`
	UpdateTime  time.Time `json:"update_time,omitempty"`
}

// UpdatedAfter is used to determine if this article was updated after the supplied article.
func (a *Article) UpdatedAfter(o *Article) bool {
	aUpdated := a.UpdateTime
	if aUpdated.IsZero() {
		aUpdated = a.CreateTime
	}
	oUpdated := o.UpdateTime
	if oUpdated.IsZero() {
		oUpdated = o.CreateTime
	}
	return aUpdated.After(oUpdated)
}

// Store keeps the most recent articles of every feed.
type Store struct {
	limit int

	articlesLock sync.RWMutex
	articles     map[string]*Article
}

// NewStore creates an article store listing at most limit articles.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = defaultArticleLimit
	}
	return &Store{
		limit:    limit,
		articles: map[string]*Article{},
	}
}

func (s *Store) refreshArticles(articles []*Article) {
	s.articlesLock.Lock()
	defer s.articlesLock.Unlock()

	for _, article := range articles {
		if existing, ok := s.articles[article.Name]; ok && !article.UpdatedAfter(existing) {
			continue
		}
		s.articles[article.Name] = article
	}

	// Only keep what can be listed; older articles drop out as the feed moves on.
	if len(s.articles) > s.limit*4 {
		for _, stale := range s.sorted()[s.limit*4:] {
			delete(s.articles, stale.Name)
		}
	}
}

// List returns the newest articles first.
func (s *Store) List() []*Article {
	s.articlesLock.RLock()
	defer s.articlesLock.RUnlock()

	ret := s.sorted()
	if len(ret) > s.limit {
		ret = ret[:s.limit]
	}
	return ret
}

func (s *Store) sorted() []*Article {
	var ret []*Article
	for _, article := range s.articles {
		ret = append(ret, article)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].CreateTime.Equal(ret[j].CreateTime) {
			return ret[i].Name < ret[j].Name
		}
		return ret[i].CreateTime.After(ret[j].CreateTime)
	})
	return ret
}
