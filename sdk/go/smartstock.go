package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

func (c *Client) postJSON(path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, _ := http.NewRequest("POST", c.BaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(path string, out interface{}) error {
	req, _ := http.NewRequest("GET", c.BaseURL+path, nil)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("api error %d: %s %s", resp.StatusCode, apiErr.Error, apiErr.Message)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StockStatus classifies one item. currentStock may be nil to let the
// server resolve stock from inventory or sales history.
func (c *Client) StockStatus(storeNbr int, family, date string, onpromotion int, currentStock *float64) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"store_nbr":   storeNbr,
		"family":      family,
		"onpromotion": onpromotion,
	}
	if date != "" {
		payload["date"] = date
	}
	if currentStock != nil {
		payload["current_stock"] = *currentStock
	}
	var out map[string]interface{}
	if err := c.postJSON("/v1/stock-status", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AutoStockStatus classifies the whole inventory snapshot.
func (c *Client) AutoStockStatus(date string) (map[string]interface{}, error) {
	path := "/v1/auto-stock-status"
	if date != "" {
		path += "?target_date=" + url.QueryEscape(date)
	}
	var out map[string]interface{}
	if err := c.getJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RangeForecast returns a demand series for one item.
func (c *Client) RangeForecast(storeNbr int, family string, days int) (map[string]interface{}, error) {
	path := fmt.Sprintf("/v1/range-forecast?store_nbr=%d&family=%s&days=%d",
		storeNbr, url.QueryEscape(family), days)
	var out map[string]interface{}
	if err := c.getJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Items lists inventory items with optional filters.
func (c *Client) Items(storeNbr int, search string) (map[string]interface{}, error) {
	u, _ := url.Parse(c.BaseURL + "/v1/items")
	q := u.Query()
	if storeNbr > 0 {
		q.Set("store_nbr", strconv.Itoa(storeNbr))
	}
	if search != "" {
		q.Set("search", search)
	}
	u.RawQuery = q.Encode()
	req, _ := http.NewRequest("GET", u.String(), nil)
	var out map[string]interface{}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateItem creates an inventory item.
func (c *Client) CreateItem(storeNbr int, family string, currentStock float64) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"store_nbr":     storeNbr,
		"family":        family,
		"current_stock": currentStock,
	}
	var out map[string]interface{}
	if err := c.postJSON("/v1/items", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckAlerts triggers a manual alert sweep.
func (c *Client) CheckAlerts() (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.postJSON("/v1/alerts/check", map[string]interface{}{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
