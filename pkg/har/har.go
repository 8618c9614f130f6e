// Package har decodes the standard HTTP Archive format (HAR 1.2) into
// the pipeline's own Exchange type. Only the subset spec.md §6 names is
// consumed; every other HAR field is ignored.
package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/usestring/apiskill/pkg/types"
)

type document struct {
	Log struct {
		Entries []entry `json:"entries"`
	} `json:"log"`
}

type entry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Request         harRequest  `json:"request"`
	Response        harResponse `json:"response"`
	// _resourceType is a nonstandard but common extension (Chrome
	// DevTools' saved HARs carry it); when absent ResourceType stays
	// empty, and only harparse's content-type checks filter the entry.
	ResourceType string `json:"_resourceType"`
}

type harRequest struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	Headers     []nameValue `json:"headers"`
	QueryString []nameValue `json:"queryString"`
	PostData    *postData   `json:"postData"`
}

type harResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	Headers     []nameValue `json:"headers"`
	Content     *content    `json:"content"`
}

type nameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type postData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type content struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
}

// Warning records one dropped or degraded HAR entry.
type Warning struct {
	Index int
	Msg   string
}

// Parse decodes a HAR document into Exchanges. It fails only when the
// top-level bytes aren't valid JSON/HAR (types.InputMalformed); a
// malformed individual entry is skipped and reported as a Warning.
func Parse(raw []byte) ([]types.Exchange, []Warning, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, types.NewError(types.InputMalformed, "invalid HAR document", err)
	}

	exchanges := make([]types.Exchange, 0, len(doc.Log.Entries))
	var warnings []Warning
	for i, e := range doc.Log.Entries {
		ex, err := convertEntry(e)
		if err != nil {
			warnings = append(warnings, Warning{Index: i, Msg: err.Error()})
			continue
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, warnings, nil
}

func convertEntry(e entry) (types.Exchange, error) {
	if e.Request.URL == "" {
		return types.Exchange{}, fmt.Errorf("entry missing request.url")
	}

	ex := types.Exchange{
		Method:         e.Request.Method,
		URL:            e.Request.URL,
		ResourceType:   e.ResourceType,
		RequestHeaders: toHeader(e.Request.Headers),
		QueryString:    toKV(e.Request.QueryString),
		Status:         e.Response.Status,
		StatusText:     e.Response.StatusText,
		ResponseHeaders: toHeader(e.Response.Headers),
	}

	if t, err := time.Parse(time.RFC3339, e.StartedDateTime); err == nil {
		ex.StartedAt = t
	}

	if e.Request.PostData != nil && e.Request.PostData.Text != "" {
		ex.RequestBody = &types.Body{
			MimeType: e.Request.PostData.MimeType,
			Text:     e.Request.PostData.Text,
		}
	}

	if e.Response.Content != nil && e.Response.Content.Text != "" {
		text := e.Response.Content.Text
		if e.Response.Content.Encoding == "base64" {
			decoded, err := base64.StdEncoding.DecodeString(text)
			if err == nil {
				text = string(decoded)
			}
		}
		ex.ResponseBody = &types.Body{
			MimeType: e.Response.Content.MimeType,
			Text:     text,
		}
	}

	return ex, nil
}

func toHeader(nvs []nameValue) types.Header {
	h := make(types.Header, 0, len(nvs))
	for _, nv := range nvs {
		h = append(h, types.KV{Name: nv.Name, Value: nv.Value})
	}
	return h
}

func toKV(nvs []nameValue) []types.KV {
	out := make([]types.KV, 0, len(nvs))
	for _, nv := range nvs {
		out = append(out, types.KV{Name: nv.Name, Value: nv.Value})
	}
	return out
}
