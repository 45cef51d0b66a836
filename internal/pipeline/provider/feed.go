package provider

import (
	"context"
	"strings"
	"sync"

	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const defaultFeedCategory = "general"

// FetchFeeds reads every configured RSS/Atom feed concurrently and maps items to articles.
// A failing feed contributes nothing; the others are still returned.
func (c *client) FetchFeeds(ctx context.Context) []dto.FinnhubNewsArticle {
	articles := []dto.FinnhubNewsArticle{}
	if len(c.feeds) == 0 {
		return articles
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, feedCfg := range c.feeds {
		feedCfg := feedCfg
		wg.Add(1)
		utils.GoSafe(c.log, func() {
			defer wg.Done()
			items := c.fetchFeed(ctx, feedCfg)
			mu.Lock()
			articles = append(articles, items...)
			mu.Unlock()
		})
	}
	wg.Wait()

	return articles
}

func (c *client) fetchFeed(ctx context.Context, feedCfg config.Feed) []dto.FinnhubNewsArticle {
	if err := c.requestLimiter.Wait(ctx); err != nil {
		c.absorb(ctx, endpointFeed, err, logger.StringField("url", feedCfg.URL))
		return nil
	}

	fp := gofeed.NewParser()
	fp.Client = c.httpClient
	feed, err := fp.ParseURLWithContext(feedCfg.URL, ctx)
	if err != nil {
		c.absorb(ctx, endpointFeed, err, logger.StringField("url", feedCfg.URL))
		return nil
	}

	source := feedCfg.Source
	if source == "" {
		source = feed.Title
	}
	category := feedCfg.Category
	if category == "" {
		category = defaultFeedCategory
	}

	articles := make([]dto.FinnhubNewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, feedItemToArticle(item, source, category))
	}

	c.log.DebugContext(ctx, "Fetched news feed",
		logger.StringField("url", feedCfg.URL),
		logger.IntField("items", len(articles)),
	)
	return articles
}

func feedItemToArticle(item *gofeed.Item, source, category string) dto.FinnhubNewsArticle {
	article := dto.FinnhubNewsArticle{
		Headline: strings.TrimSpace(item.Title),
		Summary:  htmlToText(item.Description),
		Source:   source,
		Category: category,
		URL:      item.Link,
	}
	switch {
	case item.PublishedParsed != nil:
		article.Datetime = item.PublishedParsed.Unix()
	case item.UpdatedParsed != nil:
		article.Datetime = item.UpdatedParsed.Unix()
	}
	if item.Image != nil {
		article.Image = item.Image.URL
	}
	return article
}

// htmlToText flattens an HTML fragment to single-spaced text.
func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
