package widget

import (
	"strings"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/news"
)

// Articles is a widget to display a read-only list of articles with their details available.
type Articles struct {
	*tview.Flex

	app  *tview.Application
	next tview.Primitive

	articleList   *tview.List
	articleDetail *ArticleDetail

	articles []*news.Article
}

// NewArticles creates a new, empty instance of this widget. Articles are supplied using Refresh().
// It should be at least 50 characters wide for best performance.
func NewArticles(app *tview.Application) *Articles {
	a := &Articles{
		Flex: tview.NewFlex(),
		app:  app,
	}

	a.articleList = tview.NewList().
		SetChangedFunc(a.onListEntrySelected).
		SetDoneFunc(a.onListDone)

	a.articleDetail = NewArticleDetail(app)

	a.SetBorder(true).
		SetTitle("Actualités").
		SetTitleAlign(tview.AlignLeft)

	a.SetDirection(tview.FlexRow).
		AddItem(a.articleList, 0, 1, true).
		AddItem(a.articleDetail, 0, 1, false)

	return a
}

// Refresh replaces the listed articles.
func (a *Articles) Refresh(articles []*news.Article) {
	a.app.QueueUpdateDraw(func() {
		a.articles = articles
		a.articleList.Clear()
		for _, article := range articles {
			title, rest := splitTitle(article.Title, 48)
			a.articleList.AddItem(title, rest, 0, nil)
		}
		if len(articles) > 0 {
			a.articleDetail.show(articles[0])
		}
	})
}

// splitTitle breaks a title on word boundaries so the first part fits in width characters.
func splitTitle(title string, width int) (string, string) {
	var head, tail []string
	size := 0
	for _, word := range strings.Fields(title) {
		if len(tail) > 0 || size+len(word) > width {
			tail = append(tail, word)
			continue
		}
		head = append(head, word)
		size += len(word) + 1
	}
	return strings.Join(head, " "), strings.Join(tail, " ")
}

func (a *Articles) onListEntrySelected(idx int, mainText string, secondaryText string, shortcut rune) {
	if idx < 0 || idx >= len(a.articles) {
		return
	}
	a.articleDetail.show(a.articles[idx])
}

func (a *Articles) onListDone() {
	if a.next != nil {
		a.app.SetFocus(a.next)
	}
}

// SetNextWidget controls where the focus is given should this list be left.
func (a *Articles) SetNextWidget(next tview.Primitive) {
	a.next = next
}
