package jatskit

import (
	"context"

	"go.uber.org/zap"

	"github.com/tsawler/jatskit/classify"
	"github.com/tsawler/jatskit/crossref"
	"github.com/tsawler/jatskit/jats"
)

// convertOptions holds configuration for a conversion.
type convertOptions struct {
	meta       jats.Metadata
	log        *zap.Logger
	classifier *classify.Table
	enricher   crossref.Enricher
	indent     int
	ctx        context.Context
}

// defaultOptions returns the default conversion options.
func defaultOptions() convertOptions {
	return convertOptions{
		log:        zap.NewNop(),
		classifier: classify.Default,
		indent:     2,
		ctx:        context.Background(),
	}
}

// clone creates a deep copy of convertOptions.
func (o convertOptions) clone() convertOptions {
	newOpts := o
	if o.meta.PubFormats != nil {
		newOpts.meta.PubFormats = append([]string(nil), o.meta.PubFormats...)
	}
	return newOpts
}
