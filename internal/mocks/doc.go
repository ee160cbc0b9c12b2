// Package mocks provides hand-written test doubles for interfaces that cross
// package boundaries.
//
// Each mock exposes function fields for its methods, default return values
// and call tracking:
//
//	gen := &mocks.MockGenerator{
//	    GenerateFn: func(ctx context.Context, headword string) (*generation.Content, error) {
//	        return &generation.Content{SourceText: headword, TargetText: "dog"}, nil
//	    },
//	}
package mocks
