// Package openapi embeds the HTTP contract and publishes it to the swagger UI.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var spec []byte

var (
	once   sync.Once
	doc    *openapi3.T
	docErr error
)

// Load parses and validates the embedded document. The first successful load
// also registers it with swag so /swagger/doc.json serves the same contract
// the request validator enforces.
func Load() (*openapi3.T, error) {
	once.Do(func() {
		loader := openapi3.NewLoader()
		d, err := loader.LoadFromData(spec)
		if err != nil {
			docErr = err
			return
		}
		if err = d.Validate(context.Background()); err != nil {
			docErr = err
			return
		}
		raw, err := json.Marshal(d)
		if err != nil {
			docErr = err
			return
		}
		swag.Register(swag.Name, swaggerDoc(raw))
		doc = d
	})
	return doc, docErr
}

type swaggerDoc []byte

func (d swaggerDoc) ReadDoc() string {
	return string(d)
}
