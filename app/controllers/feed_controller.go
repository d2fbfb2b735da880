package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FeedOptions configures the RSS feed of the collection.
type FeedOptions struct {
	Title   string
	BaseURL string
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Feed renders the collection as an RSS 2.0 feed. Post content is treated
// as Markdown.
func (pc *PostController) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts()
	if err != nil {
		pc.sendError(w, err)
		return
	}

	baseURL := strings.TrimRight(pc.feed.BaseURL, "/")
	feed := &feeds.Feed{
		Title:       pc.feed.Title,
		Link:        &feeds.Link{Href: baseURL + "/posts"},
		Description: pc.feed.Title,
		Created:     time.Now().UTC(),
	}

	for _, post := range posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:      post.ID,
			Title:   post.Title,
			Link:    &feeds.Link{Href: baseURL + "/posts/" + post.ID},
			Author:  &feeds.Author{Name: post.Author.String()},
			Created: post.Created,
			Content: renderMarkdown(post.Content),
		})
		if post.Created.After(feed.Updated) {
			feed.Updated = post.Created
		}
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(w); err != nil {
		log.Printf("RSS error: %v", err)
	}
}

// renderMarkdown converts Markdown to HTML, falling back to the raw input.
func renderMarkdown(input string) string {
	var b strings.Builder
	if err := markdown.Convert([]byte(input), &b); err != nil {
		return input
	}
	return b.String()
}
