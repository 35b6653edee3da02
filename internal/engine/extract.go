package engine

import (
	"context"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/pipeline"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// extractEntity opens one detail page, reads it and builds its record.
// The page is closed before returning on every path.
func (c *Crawler) extractEntity(ctx context.Context, cat config.Category, link string) (*types.Record, error) {
	if d := c.cfg.Engine.TaskTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	page, err := c.open(ctx, link)
	if err != nil {
		return nil, err
	}
	defer c.closePage(page)

	name, err := c.entityName(page, cat)
	if err != nil {
		return nil, err
	}
	entries, err := c.attributes(page)
	if err != nil {
		return nil, err
	}
	return pipeline.BuildRecord(name, entries), nil
}

// entityName reads the heading and strips the category's suffix tokens.
func (c *Crawler) entityName(page types.Page, cat config.Category) (string, error) {
	selector := c.cfg.Site.Selectors.Name
	nodes, err := page.Find(selector)
	if err != nil {
		return "", &types.ExtractionError{URL: page.URL(), Selector: selector, Err: err}
	}
	if len(nodes) == 0 {
		return "", &types.ExtractionError{URL: page.URL(), Selector: selector, Err: types.ErrNodeNotFound}
	}
	text, err := nodes[0].Text()
	if err != nil {
		return "", &types.ExtractionError{URL: page.URL(), Selector: selector, Err: err}
	}
	return pipeline.CleanName(text, cat.NameSuffixes), nil
}

// attributes reads every attribute row in document order. A row missing
// its label or value node fails the entity.
func (c *Crawler) attributes(page types.Page) ([]types.RawAttribute, error) {
	sel := c.cfg.Site.Selectors
	rows, err := page.Find(sel.Row)
	if err != nil {
		return nil, &types.ExtractionError{URL: page.URL(), Selector: sel.Row, Err: err}
	}

	entries := make([]types.RawAttribute, 0, len(rows))
	for _, row := range rows {
		label, err := firstText(row, sel.Label)
		if err != nil {
			return nil, &types.ExtractionError{URL: page.URL(), Selector: sel.Label, Err: err}
		}
		value, err := firstText(row, sel.Value)
		if err != nil {
			return nil, &types.ExtractionError{URL: page.URL(), Selector: sel.Value, Err: err}
		}
		entries = append(entries, types.RawAttribute{
			Label: pipeline.CleanLabel(label),
			Value: pipeline.CleanValue(value),
		})
	}
	return entries, nil
}

// firstText returns the text of the first match of selector under el.
func firstText(el types.Element, selector string) (string, error) {
	nodes, err := el.Find(selector)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", types.ErrNodeNotFound
	}
	return nodes[0].Text()
}
