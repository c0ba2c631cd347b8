package lucia

import (
	"context"
	"time"
)

// List is a household list (shopping, todo) maintained through the
// assistant and editable here.
type List struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Kind      string     `json:"kind,omitempty"`
	Items     []ListItem `json:"items,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// ListItem is one entry of a list.
type ListItem struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	AddedBy   string    `json:"addedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// GetLists fetches all lists with their items.
func (c *Client) GetLists(ctx context.Context) ([]List, error) {
	var out []List
	if err := c.get(ctx, "/lists", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []List{}
	}
	return out, nil
}

// CreateList adds a list.
func (c *Client) CreateList(ctx context.Context, list *List) (*List, error) {
	var out List
	if err := c.post(ctx, "/lists", list, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteList removes a list and its items.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.delete(ctx, "/lists/"+id)
}

type addItemRequest struct {
	Text string `json:"text"`
}

// AddListItem appends an item to a list.
func (c *Client) AddListItem(ctx context.Context, listID, text string) (*ListItem, error) {
	var out ListItem
	if err := c.post(ctx, "/lists/"+listID+"/items", addItemRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type checkItemRequest struct {
	Done bool `json:"done"`
}

// CheckListItem marks an item done or undone.
func (c *Client) CheckListItem(ctx context.Context, listID, itemID string, done bool) error {
	return c.put(ctx, "/lists/"+listID+"/items/"+itemID, checkItemRequest{Done: done}, nil)
}

// RemoveListItem deletes an item from a list.
func (c *Client) RemoveListItem(ctx context.Context, listID, itemID string) error {
	return c.delete(ctx, "/lists/"+listID+"/items/"+itemID)
}
