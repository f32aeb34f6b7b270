// Package hubspot provides token-authenticated access to the HubSpot
// CRM v3/v4 REST API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.hubapi.com"
	defaultPageLimit = 100
	defaultTotalCap  = 1000
	batchSize        = 100

	// eqWidenMS widens an empty exact-date search to a ±12h window.
	// HubSpot date properties are midnight-UTC epochs, so a local-day
	// midnight rarely matches the stored value exactly.
	eqWidenMS = 12 * 3600 * 1000
)

// Client defines the HubSpot CRM operations used by the workflows.
type Client interface {
	SearchDealsByDate(ctx context.Context, q DateSearch) ([]Deal, error)
	SearchDealsByAppointment(ctx context.Context, appointmentID, pipelineID string, stageIDs []string, properties []string) ([]Deal, error)
	DealIDsByAppointment(ctx context.Context, appointmentID string) ([]string, error)
	BatchReadDeals(ctx context.Context, dealIDs, properties []string) (map[string]map[string]string, error)
	MarkRemindersSent(ctx context.Context, dealIDs []string) (ok, failed int)
	UpdateTicketOwners(ctx context.Context, dealToEmail map[string]string) (ok, failed int)
	DealContacts(ctx context.Context, dealIDs []string) (map[string][]string, error)
	ContactDeals(ctx context.Context, contactIDs []string) (map[string][]string, error)
	ContactIDsForDeal(ctx context.Context, dealID string) ([]string, error)
	ContactNoteIDs(ctx context.Context, contactID string) ([]string, error)
	NotesContent(ctx context.Context, noteIDs []string) ([]Note, error)
	OwnerName(ctx context.Context, ownerID string) string
	DealPropertyOptions(ctx context.Context, property string) []PropertyOption
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithPageLimit sets the per-page size of search requests.
func WithPageLimit(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

// WithTotalCap bounds the number of results a search will paginate through.
func WithTotalCap(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.totalCap = n
		}
	}
}

type httpClient struct {
	token     string
	baseURL   string
	pageLimit int
	totalCap  int
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a HubSpot API client using a private app token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:     token,
		baseURL:   defaultBaseURL,
		pageLimit: defaultPageLimit,
		totalCap:  defaultTotalCap,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) do(ctx context.Context, method, path string, payload, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "hubspot: rate limit")
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return eris.Wrap(err, "hubspot: marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "hubspot: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "hubspot: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "hubspot: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("hubspot: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "hubspot: unmarshal response")
		}
	}
	return nil
}

// searchOnce pages through a deal search until the cursor runs out or
// the total cap is hit.
func (c *httpClient) searchOnce(ctx context.Context, payload searchPayload) ([]Deal, error) {
	var out []Deal
	after := ""
	fetched := 0
	for {
		body := payload
		limit := body.Limit
		if limit <= 0 {
			limit = c.pageLimit
		}
		if remaining := c.totalCap - fetched; limit > remaining {
			limit = remaining
		}
		if limit <= 0 {
			break
		}
		body.Limit = limit
		body.After = after

		var resp searchResponse
		if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals/search", body, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Results...)
		fetched += len(resp.Results)

		after = resp.Paging.Next.After
		if after == "" || fetched >= c.totalCap {
			break
		}
	}
	return out, nil
}

func (c *httpClient) SearchDealsByDate(ctx context.Context, q DateSearch) ([]Deal, error) {
	filters := []filter{
		{PropertyName: "pipeline", Operator: "EQ", Value: q.PipelineID},
		{PropertyName: "dealstage", Operator: "EQ", Value: q.StageID},
	}
	if q.StateValue != "" {
		filters = append(filters, filter{PropertyName: "car_location_at_time_of_sale", Operator: "EQ", Value: q.StateValue})
	}
	if q.EqMS != nil {
		filters = append(filters, filter{PropertyName: q.DateProperty, Operator: "EQ", Value: strconv.FormatInt(*q.EqMS, 10)})
	} else {
		if q.StartMS != nil {
			filters = append(filters, filter{PropertyName: q.DateProperty, Operator: "GTE", Value: strconv.FormatInt(*q.StartMS, 10)})
		}
		if q.EndMS != nil {
			filters = append(filters, filter{PropertyName: q.DateProperty, Operator: "LTE", Value: strconv.FormatInt(*q.EndMS, 10)})
		}
	}
	payload := searchPayload{
		FilterGroups: []filterGroup{{Filters: filters}},
		Properties:   q.Properties,
		Limit:        c.pageLimit,
	}
	deals, err := c.searchOnce(ctx, payload)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 && q.EqMS != nil {
		widened := filters[:len(filters)-1]
		widened = append(widened,
			filter{PropertyName: q.DateProperty, Operator: "GTE", Value: strconv.FormatInt(*q.EqMS-eqWidenMS, 10)},
			filter{PropertyName: q.DateProperty, Operator: "LTE", Value: strconv.FormatInt(*q.EqMS+eqWidenMS, 10)},
		)
		payload.FilterGroups = []filterGroup{{Filters: widened}}
		return c.searchOnce(ctx, payload)
	}
	return deals, nil
}

func (c *httpClient) SearchDealsByAppointment(ctx context.Context, appointmentID, pipelineID string, stageIDs []string, properties []string) ([]Deal, error) {
	payload := searchPayload{
		FilterGroups: []filterGroup{{Filters: []filter{
			{PropertyName: "pipeline", Operator: "EQ", Value: pipelineID},
			{PropertyName: "appointment_id", Operator: "EQ", Value: appointmentID},
			{PropertyName: "dealstage", Operator: "IN", Values: stageIDs},
		}}},
		Properties: properties,
		Limit:      c.pageLimit,
	}
	return c.searchOnce(ctx, payload)
}

func (c *httpClient) DealIDsByAppointment(ctx context.Context, appointmentID string) ([]string, error) {
	if appointmentID == "" {
		return nil, nil
	}
	payload := searchPayload{
		FilterGroups: []filterGroup{{Filters: []filter{
			{PropertyName: "appointment_id", Operator: "EQ", Value: appointmentID},
		}}},
		Properties: []string{"hs_object_id", "dealstage", "appointment_id"},
		Limit:      c.pageLimit,
	}
	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals/search", payload, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Results))
	for _, d := range resp.Results {
		if id := d.Properties["hs_object_id"]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *httpClient) BatchReadDeals(ctx context.Context, dealIDs, properties []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(dealIDs))
	for i := 0; i < len(dealIDs); i += batchSize {
		chunk := dealIDs[i:min(i+batchSize, len(dealIDs))]
		payload := batchReadPayload{Properties: properties}
		for _, id := range chunk {
			payload.Inputs = append(payload.Inputs, batchInput{ID: id})
		}
		var resp batchReadResponse
		if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals/batch/read", payload, &resp); err != nil {
			return nil, eris.Wrap(err, "hubspot: batch read deals")
		}
		for _, item := range resp.Results {
			props := item.Properties
			if props == nil {
				props = map[string]string{}
			}
			out[item.ID] = props
		}
	}
	return out, nil
}

// MarkRemindersSent sets td_reminder_sms_sent to "true" on every deal.
// Failures are counted per chunk rather than aborting the run.
func (c *httpClient) MarkRemindersSent(ctx context.Context, dealIDs []string) (int, int) {
	props := func(string) map[string]string {
		return map[string]string{"td_reminder_sms_sent": "true"}
	}
	return c.batchUpdate(ctx, dealIDs, props)
}

// UpdateTicketOwners writes the assigned associate's email into the
// ticket_owner property of each deal.
func (c *httpClient) UpdateTicketOwners(ctx context.Context, dealToEmail map[string]string) (int, int) {
	ids := make([]string, 0, len(dealToEmail))
	for id := range dealToEmail {
		ids = append(ids, id)
	}
	props := func(id string) map[string]string {
		return map[string]string{"ticket_owner": dealToEmail[id]}
	}
	return c.batchUpdate(ctx, ids, props)
}

func (c *httpClient) batchUpdate(ctx context.Context, dealIDs []string, props func(string) map[string]string) (int, int) {
	ok, failed := 0, 0
	for i := 0; i < len(dealIDs); i += batchSize {
		chunk := dealIDs[i:min(i+batchSize, len(dealIDs))]
		payload := batchUpdatePayload{}
		for _, id := range chunk {
			payload.Inputs = append(payload.Inputs, batchInput{ID: id, Properties: props(id)})
		}
		if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals/batch/update", payload, nil); err != nil {
			failed += len(chunk)
			zap.L().Warn("hubspot: batch update failed", zap.Error(err))
			continue
		}
		ok += len(chunk)
	}
	return ok, failed
}

func (c *httpClient) DealContacts(ctx context.Context, dealIDs []string) (map[string][]string, error) {
	return c.associationsMap(ctx, "/crm/v4/objects/deals/batch/read", dealIDs, "contacts")
}

func (c *httpClient) ContactDeals(ctx context.Context, contactIDs []string) (map[string][]string, error) {
	return c.associationsMap(ctx, "/crm/v4/objects/contacts/batch/read", contactIDs, "deals")
}

func (c *httpClient) associationsMap(ctx context.Context, path string, ids []string, assoc string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		out[id] = nil
	}
	if len(ids) == 0 {
		return out, nil
	}
	payload := batchReadPayload{Properties: []string{}, Associations: []string{assoc}}
	for _, id := range ids {
		payload.Inputs = append(payload.Inputs, batchInput{ID: id})
	}
	var resp batchReadResponse
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("hubspot: read %s associations", assoc))
	}
	for _, item := range resp.Results {
		var linked []string
		for _, a := range item.Associations[assoc] {
			if a.ID != "" {
				linked = append(linked, a.ID)
			}
		}
		out[item.ID] = linked
	}
	return out, nil
}

func (c *httpClient) ContactIDsForDeal(ctx context.Context, dealID string) ([]string, error) {
	var resp associationListResponse
	path := fmt.Sprintf("/crm/v3/objects/deals/%s/associations/contacts", dealID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: deal contacts")
	}
	return associationIDs(resp), nil
}

func (c *httpClient) ContactNoteIDs(ctx context.Context, contactID string) ([]string, error) {
	var resp associationListResponse
	path := fmt.Sprintf("/crm/v3/objects/contacts/%s/associations/notes", contactID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: contact notes")
	}
	return associationIDs(resp), nil
}

func associationIDs(resp associationListResponse) []string {
	var ids []string
	for _, r := range resp.Results {
		switch {
		case r.ToObjectID != 0:
			ids = append(ids, strconv.FormatInt(r.ToObjectID, 10))
		case r.ID != "":
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func (c *httpClient) NotesContent(ctx context.Context, noteIDs []string) ([]Note, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}
	payload := batchReadPayload{
		Properties: []string{"hs_note_body", "hs_timestamp", "hs_createdate", "hubspot_owner_id"},
	}
	for _, id := range noteIDs {
		payload.Inputs = append(payload.Inputs, batchInput{ID: id})
	}
	var resp batchReadResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/notes/batch/read", payload, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: read notes")
	}
	notes := make([]Note, 0, len(resp.Results))
	for _, item := range resp.Results {
		notes = append(notes, Note{
			ID:         item.ID,
			Body:       item.Properties["hs_note_body"],
			Timestamp:  item.Properties["hs_timestamp"],
			CreateDate: item.Properties["hs_createdate"],
			OwnerID:    item.Properties["hubspot_owner_id"],
		})
	}
	return notes, nil
}

// OwnerName resolves an owner to "First Last", falling back to their
// email, then to a generic label. Lookup failures soft-fail.
func (c *httpClient) OwnerName(ctx context.Context, ownerID string) string {
	if ownerID == "" {
		return "Unknown User"
	}
	var resp ownerResponse
	if err := c.do(ctx, http.MethodGet, "/crm/v3/owners/"+ownerID, nil, &resp); err != nil {
		return "User " + ownerID
	}
	name := resp.FirstName
	if resp.LastName != "" {
		if name != "" {
			name += " "
		}
		name += resp.LastName
	}
	if name != "" {
		return name
	}
	if resp.Email != "" {
		return resp.Email
	}
	return "User " + ownerID
}

// auStates is the fallback when the property options call fails, so a
// run can still target a state.
var auStates = []string{"VIC", "NSW", "QLD", "SA", "WA", "TAS", "NT", "ACT"}

func (c *httpClient) DealPropertyOptions(ctx context.Context, property string) []PropertyOption {
	fallback := make([]PropertyOption, 0, len(auStates))
	for _, s := range auStates {
		fallback = append(fallback, PropertyOption{Label: s, Value: s})
	}

	var resp propertyResponse
	if err := c.do(ctx, http.MethodGet, "/crm/v3/properties/deals/"+property+"?archived=false", nil, &resp); err != nil {
		zap.L().Info("hubspot: property options unavailable, using AU states", zap.Error(err))
		return fallback
	}
	var out []PropertyOption
	for _, opt := range resp.Options {
		value := opt.Value
		if value == "" {
			continue
		}
		label := opt.Label
		if label == "" {
			label = opt.DisplayValue
		}
		if label == "" {
			label = value
		}
		out = append(out, PropertyOption{Label: label, Value: value})
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
