package report

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"rugby-scorekeeper/internal/models"
)

// PDFRenderer печатает HTML-отчёт в PDF через headless Chrome.
type PDFRenderer struct {
	Timeout time.Duration
	// ExecPath: путь к chrome, пустой означает поиск в PATH.
	ExecPath string
	Log      *zap.SugaredLogger
}

func (r PDFRenderer) MatchPDF(ctx context.Context, m models.Match) ([]byte, error) {
	html, err := HTML(m)
	if err != nil {
		return nil, err
	}
	return r.print(ctx, string(html))
}

func (r PDFRenderer) SummaryPDF(ctx context.Context, m models.Match) ([]byte, error) {
	html, err := SummaryHTML(m)
	if err != nil {
		return nil, err
	}
	return r.print(ctx, string(html))
}

func (r PDFRenderer) print(ctx context.Context, html string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	var ctxOpts []chromedp.ContextOption
	if r.Log != nil {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(r.Log.Debugf))
	}
	ctx, cancel = chromedp.NewContext(allocCtx, ctxOpts...)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}
