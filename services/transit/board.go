package transit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rmrobinson/kiosk/lib/stream"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Board builds the board model from the monitored stops and publishes it.
type Board struct {
	logger    *zap.Logger
	fetcher   Fetcher
	endpoints Endpoints
	registry  *Registry
	parser    *StopMonitoringParser
	merger    *Merger
	resolver  *MetaResolver
	timetable *TimetableFallback
	clock     func() time.Time
	loc       *time.Location

	current *atomic.Pointer[BoardModel]
	updates *stream.Source[*BoardModel]

	windowsLock sync.Mutex
	windowsDay  string
	windows     map[string]serviceWindow
}

type serviceWindow struct {
	first string
	last  string
}

// BoardOption customizes a Board.
type BoardOption func(*Board)

// WithClock overrides the time source of the board.
func WithClock(clock func() time.Time) BoardOption {
	return func(b *Board) {
		b.clock = clock
	}
}

// WithServiceWindows enables first/last service times on every group, looked up once per service day.
func WithServiceWindows(timetable *TimetableFallback) BoardOption {
	return func(b *Board) {
		b.timetable = timetable
	}
}

// WithLocation sets the time zone used for display times.
func WithLocation(loc *time.Location) BoardOption {
	return func(b *Board) {
		b.loc = loc
	}
}

// NewBoard creates a board. Nothing is fetched until Refresh is called.
func NewBoard(logger *zap.Logger, fetcher Fetcher, endpoints Endpoints, registry *Registry, parser *StopMonitoringParser, merger *Merger, resolver *MetaResolver, opts ...BoardOption) *Board {
	b := &Board{
		logger:    logger,
		fetcher:   fetcher,
		endpoints: endpoints,
		registry:  registry,
		parser:    parser,
		merger:    merger,
		resolver:  resolver,
		clock:     time.Now,
		loc:       time.Local,
		current:   atomic.NewPointer[BoardModel](nil),
		updates:   stream.NewSource[*BoardModel](logger),
		windows:   map[string]serviceWindow{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type stopResult struct {
	visits []Visit
	ok     bool
}

// Refresh runs a full cycle: every monitored stop is fetched concurrently, each column is
// merged with its expected lines, and the resulting model replaces the current one.
// A failed stop never fails the cycle; its columns are filled from the fallback.
func (b *Board) Refresh(ctx context.Context) *BoardModel {
	now := b.clock()
	stops := b.registry.Stops()

	results := make([]stopResult, len(stops))
	var wg sync.WaitGroup
	for idx, stop := range stops {
		wg.Add(1)
		go func(idx int, stop StopID) {
			defer wg.Done()

			resp := b.fetcher.Fetch(ctx, b.endpoints.stopMonitoringURL(stop))
			if resp == nil {
				return
			}
			results[idx] = stopResult{
				visits: b.parser.Parse(resp.Body),
				ok:     true,
			}
		}(idx, stop)
	}

	lines := b.registry.Lines()
	metas := make([]LineMeta, len(lines))
	for idx, line := range lines {
		wg.Add(1)
		go func(idx int, line LineID) {
			defer wg.Done()
			metas[idx] = b.resolver.Resolve(ctx, line)
		}(idx, line)
	}
	wg.Wait()

	byStop := map[StopID]stopResult{}
	model := &BoardModel{
		GeneratedAt: now,
		Columns:     map[string][]BoardGroup{},
	}
	for idx, stop := range stops {
		byStop[stop] = results[idx]
		if !results[idx].ok {
			model.Errors = append(model.Errors, fmt.Sprintf("stop monitoring unavailable for %s", stop))
		}
	}
	metaByLine := map[LineID]LineMeta{}
	for idx, line := range lines {
		metaByLine[line] = metas[idx]
	}

	columns := make([][]BoardGroup, len(b.registry.Columns))
	for idx, col := range b.registry.Columns {
		wg.Add(1)
		go func(idx int, col Column) {
			defer wg.Done()

			groups := b.merger.MergeColumn(ctx, col, byStop[col.Stop].visits, now)
			for gidx := range groups {
				groups[gidx].Meta = metaByLine[groups[gidx].LineID]
				b.applyWindow(ctx, col.Stop, &groups[gidx], now)
			}
			columns[idx] = groups
		}(idx, col)
	}
	wg.Wait()

	for idx, col := range b.registry.Columns {
		model.Columns[col.ID] = columns[idx]
	}

	b.current.Store(model)
	b.updates.SendMessage(model)

	b.logger.Debug("board refreshed",
		zap.Int("column_count", len(model.Columns)),
		zap.Int("error_count", len(model.Errors)),
		zap.Duration("elapsed", b.clock().Sub(now)),
	)
	return model
}

// Current returns the last published model, or nil before the first refresh completes.
func (b *Board) Current() *BoardModel {
	return b.current.Load()
}

// Subscribe returns a sink receiving a copy of every model published from now on.
func (b *Board) Subscribe() *stream.Sink[*BoardModel] {
	return b.updates.NewSink()
}

func (b *Board) applyWindow(ctx context.Context, stop StopID, group *BoardGroup, now time.Time) {
	if b.timetable == nil {
		return
	}
	code, ok := b.registry.Code(group.LineID)
	if !ok {
		return
	}

	day := now.In(b.loc).Format("20060102")
	key := fmt.Sprintf("%s|%s", stop, code)
	b.windowsLock.Lock()
	if b.windowsDay != day {
		b.windowsDay = day
		b.windows = map[string]serviceWindow{}
	}
	w, cached := b.windows[key]
	b.windowsLock.Unlock()

	if !cached {
		first, last := b.timetable.DailyWindow(ctx, FallbackRequest{
			Stop: stop,
			Line: group.LineID,
			Code: code,
		}, now)
		if first == nil || last == nil {
			return
		}
		w = serviceWindow{
			first: first.In(b.loc).Format(clockFormat),
			last:  last.In(b.loc).Format(clockFormat),
		}

		b.windowsLock.Lock()
		b.windows[key] = w
		b.windowsLock.Unlock()
	}

	group.FirstService = w.first
	group.LastService = w.last
}
