package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CourierClient represents the API client
type CourierClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Out     io.Writer
}

func NewClient(baseURL, token string, out io.Writer) *CourierClient {
	return &CourierClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 45 * time.Second},
		Out:     out,
	}
}

// API response structures
type ContactResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ContactListResponse struct {
	Items []ContactResponse `json:"items"`
	Total int               `json:"total"`
	Limit int               `json:"limit"`
}

type SendRequest struct {
	ContactID *int64         `json:"contact_id,omitempty"`
	ToEmail   string         `json:"to_email,omitempty"`
	ToName    string         `json:"to_name,omitempty"`
	Template  string         `json:"template"`
	Subject   string         `json:"subject"`
	Variables map[string]any `json:"variables,omitempty"`
}

type SendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	AttemptID string `json:"attempt_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type TemplateResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type StatsResponse struct {
	Total        int    `json:"total"`
	Successful   int    `json:"successful"`
	Failed       int    `json:"failed"`
	LastDate     string `json:"last_date"`
	Contacts     int    `json:"contacts"`
	ContactLimit int    `json:"contact_limit"`
}

type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ToEmail   string    `json:"to_email"`
	ToName    string    `json:"to_name"`
	Subject   string    `json:"subject"`
	Template  string    `json:"template"`
	Success   bool      `json:"success"`
	Error     *string   `json:"error"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTP client methods
func (c *CourierClient) makeRequest(method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	url := c.BaseURL + path
	logVerbose("Making %s request to %s", method, url)

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logVerbose("Response status: %s", resp.Status)
	return resp, nil
}

func (c *CourierClient) handleResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *CourierClient) do(method, path string, body, target any) error {
	resp, err := c.makeRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, target)
}

// Contact methods
func (c *CourierClient) AddContact(name, email string) error {
	var contact ContactResponse
	if err := c.do(http.MethodPost, "/api/v1/contacts", map[string]string{"name": name, "email": email}, &contact); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, contact)
	}
	fmt.Fprintf(c.Out, "Contact added: %s <%s> (ID: %d)\n", contact.Name, contact.Email, contact.ID)
	return nil
}

func (c *CourierClient) ListContacts(query string) error {
	path := "/api/v1/contacts"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var list ContactListResponse
	if err := c.do(http.MethodGet, path, nil, &list); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, list)
	}
	if len(list.Items) == 0 {
		if query != "" {
			fmt.Fprintf(c.Out, "No contacts found matching %q\n", query)
		} else {
			fmt.Fprintln(c.Out, "No contacts yet. Add one with: courier-cli contacts add \"Name\" email@example.com")
		}
		return nil
	}
	fmt.Fprintf(c.Out, "%-6s %-30s %-36s\n", "ID", "NAME", "EMAIL")
	fmt.Fprintln(c.Out, strings.Repeat("-", 74))
	for _, ct := range list.Items {
		fmt.Fprintf(c.Out, "%-6d %-30s %-36s\n", ct.ID, ct.Name, ct.Email)
	}
	if query == "" {
		fmt.Fprintf(c.Out, "\n%d/%d contacts\n", list.Total, list.Limit)
	}
	return nil
}

func (c *CourierClient) GetContact(id int64) error {
	var contact ContactResponse
	if err := c.do(http.MethodGet, "/api/v1/contacts/"+strconv.FormatInt(id, 10), nil, &contact); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, contact)
	}
	fmt.Fprintf(c.Out, "ID:      %d\nName:    %s\nEmail:   %s\nCreated: %s\n", contact.ID, contact.Name, contact.Email, contact.CreatedAt)
	if contact.UpdatedAt != "" {
		fmt.Fprintf(c.Out, "Updated: %s\n", contact.UpdatedAt)
	}
	return nil
}

func (c *CourierClient) UpdateContact(id int64, name, email *string) error {
	body := map[string]string{}
	if name != nil {
		body["name"] = *name
	}
	if email != nil {
		body["email"] = *email
	}
	var contact ContactResponse
	if err := c.do(http.MethodPatch, "/api/v1/contacts/"+strconv.FormatInt(id, 10), body, &contact); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, contact)
	}
	fmt.Fprintf(c.Out, "Contact updated: %s <%s> (ID: %d)\n", contact.Name, contact.Email, contact.ID)
	return nil
}

func (c *CourierClient) RemoveContact(id int64) error {
	if err := c.do(http.MethodDelete, "/api/v1/contacts/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Contact %d removed\n", id)
	return nil
}

// Dispatch methods
func (c *CourierClient) Send(req SendRequest) error {
	resp, err := c.makeRequest(http.MethodPost, "/api/v1/emails", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	// failed sends still carry a result body
	var res SendResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, res)
	}
	if !res.Success {
		if res.Error == "" {
			var errResp ErrorResponse
			_ = json.Unmarshal(body, &errResp)
			res.Error = errResp.Error
		}
		return fmt.Errorf("failed to send email: %s", res.Error)
	}
	fmt.Fprintf(c.Out, "Email sent (message id: %s)\n", res.MessageID)
	return nil
}

func (c *CourierClient) ListTemplates() error {
	var list []TemplateResponse
	if err := c.do(http.MethodGet, "/api/v1/templates", nil, &list); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(c.Out, "No templates available")
		return nil
	}
	for _, t := range list {
		fmt.Fprintf(c.Out, "%-24s %s\n", t.Name, t.Description)
	}
	return nil
}

func (c *CourierClient) Stats() error {
	var st StatsResponse
	if err := c.do(http.MethodGet, "/api/v1/stats", nil, &st); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, st)
	}
	fmt.Fprintf(c.Out, "Contacts:     %d/%d\n", st.Contacts, st.ContactLimit)
	fmt.Fprintf(c.Out, "Emails sent:  %d\n", st.Total)
	fmt.Fprintf(c.Out, "Successful:   %d\n", st.Successful)
	fmt.Fprintf(c.Out, "Failed:       %d\n", st.Failed)
	fmt.Fprintf(c.Out, "Last email:   %s\n", st.LastDate)
	return nil
}

func (c *CourierClient) History(limit int) error {
	var entries []HistoryEntry
	if err := c.do(http.MethodGet, "/api/v1/history?limit="+strconv.Itoa(limit), nil, &entries); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.Out, "No emails sent yet")
		return nil
	}
	fmt.Fprintf(c.Out, "%-20s %-8s %-30s %-20s %s\n", "WHEN", "STATUS", "TO", "TEMPLATE", "SUBJECT")
	fmt.Fprintln(c.Out, strings.Repeat("-", 100))
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Fprintf(c.Out, "%-20s %-8s %-30s %-20s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), status, e.ToEmail, e.Template, e.Subject)
	}
	return nil
}

func (c *CourierClient) CheckHealth() error {
	var health map[string]any
	if err := c.do(http.MethodGet, "/healthz", nil, &health); err != nil {
		return err
	}
	if outputFmt == "json" {
		return formatJSON(c.Out, health)
	}
	fmt.Fprintf(c.Out, "Status: %v\n", health["status"])
	for _, k := range []string{"version", "db", "cache", "templates"} {
		if v, ok := health[k]; ok {
			fmt.Fprintf(c.Out, "%-10s %v\n", k+":", v)
		}
	}
	return nil
}
