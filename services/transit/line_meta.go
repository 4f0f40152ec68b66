package transit

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/bluele/gcache"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

const (
	defaultPrimaryColor  = "#2450a4"
	defaultTextColor     = "#ffffff"
	defaultMetaStoreSize = 512
)

//go:embed line_colors.csv
var lineColorsCSV []byte

type lineColorRecord struct {
	LineID       string `csv:"line_id"`
	Code         string `csv:"code"`
	PrimaryColor string `csv:"primary_color"`
	TextColor    string `csv:"text_color"`
}

// MetaStore memoizes resolved line metadata. Implementations must be safe for concurrent use.
type MetaStore interface {
	Get(line LineID) (LineMeta, bool)
	Put(line LineID, meta LineMeta)
}

type cacheMetaStore struct {
	cache gcache.Cache
}

// NewMetaStore creates an in-memory store holding up to size lines. Entries are evicted once the
// store is full, so it must exceed the number of distinct lines resolved.
func NewMetaStore(size int) MetaStore {
	if size <= 0 {
		size = defaultMetaStoreSize
	}
	return &cacheMetaStore{
		cache: gcache.New(size).Simple().Build(),
	}
}

func (s *cacheMetaStore) Get(line LineID) (LineMeta, bool) {
	v, err := s.cache.Get(string(line))
	if err != nil {
		return LineMeta{}, false
	}
	meta, ok := v.(LineMeta)
	return meta, ok
}

func (s *cacheMetaStore) Put(line LineID, meta LineMeta) {
	// Set only fails on a nil key.
	_ = s.cache.Set(string(line), meta)
}

type catalogResponse struct {
	Results []struct {
		IDLine     string `json:"id_line"`
		ShortName  string `json:"shortname_line"`
		Colour     string `json:"colourweb_hexa"`
		TextColour string `json:"textcolourweb_hexa"`
	} `json:"results"`
}

// MetaResolver resolves line branding from the reference catalog.
type MetaResolver struct {
	logger    *zap.Logger
	fetcher   Fetcher
	endpoints Endpoints
	codes     LineCodeMap
	store     MetaStore
	fallback  map[LineID]LineMeta
}

// NewMetaResolver creates a resolver. A nil store gets an in-memory one sized well above the
// configured lines, so resolved entries are never evicted.
func NewMetaResolver(logger *zap.Logger, fetcher Fetcher, endpoints Endpoints, codes LineCodeMap, store MetaStore) *MetaResolver {
	if store == nil {
		store = NewMetaStore(max(defaultMetaStoreSize, 2*len(codes)))
	}

	r := &MetaResolver{
		logger:    logger,
		fetcher:   fetcher,
		endpoints: endpoints,
		codes:     codes,
		store:     store,
		fallback:  map[LineID]LineMeta{},
	}

	var records []*lineColorRecord
	if err := gocsv.UnmarshalBytes(lineColorsCSV, &records); err != nil {
		logger.Error("unable to load fallback line colors",
			zap.Error(err),
		)
	}
	for _, rec := range records {
		r.fallback[LineID(rec.LineID)] = LineMeta{
			Code:         rec.Code,
			PrimaryColor: rec.PrimaryColor,
			TextColor:    rec.TextColor,
		}
	}
	return r
}

// Resolve returns the branding of the line. It never fails: when the catalog cannot be
// reached the built-in colors are returned.
func (r *MetaResolver) Resolve(ctx context.Context, line LineID) LineMeta {
	if meta, ok := r.store.Get(line); ok {
		return meta
	}

	meta, ok := LineMeta{}, false
	if code, known := r.codes[line]; known && code != "" {
		meta, ok = r.lookup(ctx, "id_line", code)
	}
	if !ok {
		meta, ok = r.lookup(ctx, "shortname_line", string(line))
	}
	if !ok {
		r.logger.Debug("using fallback line colors",
			zap.String("line", string(line)),
		)
		meta = r.fallbackMeta(line)
	}

	r.store.Put(line, meta)
	return meta
}

func (r *MetaResolver) lookup(ctx context.Context, field, value string) (LineMeta, bool) {
	if r.endpoints.LineCatalog == "" {
		return LineMeta{}, false
	}

	target := fmt.Sprintf("%s?where=%s&limit=1", r.endpoints.LineCatalog, url.QueryEscape(fmt.Sprintf("%s=%q", field, value)))
	resp := r.fetcher.Fetch(ctx, target)
	if resp == nil {
		return LineMeta{}, false
	}

	var cr catalogResponse
	if err := resp.Decode(&cr); err != nil {
		r.logger.Info("unable to decode line catalog response",
			zap.String("field", field),
			zap.String("value", value),
			zap.Error(err),
		)
		return LineMeta{}, false
	}
	if len(cr.Results) < 1 {
		return LineMeta{}, false
	}

	rec := cr.Results[0]
	meta := LineMeta{
		Code:         rec.ShortName,
		PrimaryColor: hexColor(rec.Colour, defaultPrimaryColor),
		TextColor:    hexColor(rec.TextColour, defaultTextColor),
	}
	if meta.Code == "" {
		meta.Code = value
	}
	return meta, true
}

func (r *MetaResolver) fallbackMeta(line LineID) LineMeta {
	if meta, ok := r.fallback[line]; ok {
		return meta
	}
	return LineMeta{
		Code:         string(line),
		PrimaryColor: defaultPrimaryColor,
		TextColor:    defaultTextColor,
	}
}

// hexColor normalizes catalog colors, which are published without the leading '#'.
func hexColor(c, def string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return def
	}
	if !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	return strings.ToLower(c)
}
