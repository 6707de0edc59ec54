package openapi

import (
	"github.com/spf13/cast"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
)

// decodeExtensions reads the x-ms-* extensions the generator understands.
// It returns nil when raw is empty.
func decodeExtensions(raw map[string]any) *codemodel.Extensions {
	if len(raw) == 0 {
		return nil
	}
	e := &codemodel.Extensions{Raw: make(map[string]any, len(raw))}
	for key, v := range raw {
		e.Raw[key] = v
		switch key {
		case "x-ms-pageable":
			m := cast.ToStringMap(v)
			e.Pageable = &codemodel.Pageable{
				NextLinkName:  cast.ToString(m["nextLinkName"]),
				ItemName:      cast.ToString(m["itemName"]),
				OperationName: cast.ToString(m["operationName"]),
			}
			if e.Pageable.ItemName == "" {
				e.Pageable.ItemName = "value"
			}
		case "x-ms-skip-url-encoding":
			e.SkipURLEncoding = cast.ToBool(v)
		case "x-ms-client-flatten":
			e.ClientFlatten = cast.ToBool(v)
		case "x-ms-long-running-operation":
			e.LongRunningOperation = cast.ToBool(v)
		case "x-ms-long-running-operation-options":
			e.LongRunningOptions = &codemodel.LongRunningOptions{
				FinalStateVia: cast.ToString(cast.ToStringMap(v)["final-state-via"]),
			}
		case "x-ms-flattened":
			e.Flattened = cast.ToBool(v)
		case "x-ms-azure-resource":
			e.AzureResource = cast.ToBool(v)
		case "x-ms-mutability":
			e.Mutability = cast.ToStringSlice(v)
		case "x-ms-header-collection-prefix":
			e.HeaderCollectionPrefix = cast.ToString(v)
		case "x-ms-secret":
			e.Secret = cast.ToBool(v)
		case "x-ms-examples":
			e.Examples = cast.ToStringMap(v)
		}
	}
	return e
}
