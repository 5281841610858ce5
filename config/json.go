package config

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var frozen sync.Map // JSON -> jsoniter.API

// API returns the json-iterator codec configured accordingly. Codecs are frozen once per
// distinct setting and shared afterward, as freezing is way too expensive to be done per body.
func (j JSON) API() jsoniter.API {
	if api, ok := frozen.Load(j); ok {
		return api.(jsoniter.API)
	}

	api, _ := frozen.LoadOrStore(j, jsoniter.Config{
		EscapeHTML:             j.EscapeHTML,
		SortMapKeys:            j.SortMapKeys,
		UseNumber:              j.UseNumber,
		DisallowUnknownFields:  j.DisallowUnknownFields,
		IndentionStep:          j.IndentionStep,
		ValidateJsonRawMessage: true,
	}.Froze())

	return api.(jsoniter.API)
}
