package widget

import (
	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/news"
)

// ArticleDetail is a widget that provides for viewing article details.
type ArticleDetail struct {
	*tview.Flex

	app *tview.Application

	bodyText *tview.TextView
	urlText  *tview.TextView
}

// NewArticleDetail creates a new instance of the ArticleDetail view.
// Nothing will be displayed until an article is selected in the parent list.
func NewArticleDetail(app *tview.Application) *ArticleDetail {
	dd := &ArticleDetail{
		Flex:     tview.NewFlex(),
		app:      app,
		bodyText: tview.NewTextView(),
		urlText:  tview.NewTextView(),
	}

	dd.bodyText.
		SetWordWrap(true).
		SetTextAlign(tview.AlignLeft).
		SetTitle("Article").
		SetBorder(true)

	dd.urlText.
		SetTitleAlign(tview.AlignLeft).
		SetTitle("URL").
		SetBorder(true)

	dd.SetDirection(tview.FlexRow).
		AddItem(dd.bodyText, 0, 5, false).
		AddItem(dd.urlText, 3, 1, false)

	return dd
}

// show must be called from the application goroutine.
func (dd *ArticleDetail) show(article *news.Article) {
	dd.bodyText.SetTitle(article.Source)
	dd.bodyText.SetText(article.Description)
	dd.urlText.SetText(article.Link)
}
