package assembler

import "github.com/blimu-dev/clientgen/pkg/clientmodel"

// pairConvenience pairs the visible convenience methods of an operation with
// the visible protocol methods generated from the same proxy method. Sync
// and async protocol variants share the proxy, so one convenience method
// usually pairs with several. It returns nil when there is nothing to pair.
func pairConvenience(generated, convenience []*clientmodel.ClientMethod) *clientmodel.ConvenienceMethod {
	var public []*clientmodel.ClientMethod
	for _, m := range convenience {
		if m.Visibility == clientmodel.Visible {
			public = append(public, m)
		}
	}
	if len(public) == 0 {
		return nil
	}

	base := public[0].Proxy.BaseName
	var protocol []*clientmodel.ClientMethod
	for _, m := range generated {
		if m.Protocol && m.Visibility == clientmodel.Visible && m.Proxy != nil && m.Proxy.BaseName == base {
			protocol = append(protocol, m)
		}
	}
	if len(protocol) == 0 {
		return nil
	}
	return &clientmodel.ConvenienceMethod{Protocol: protocol, Convenience: public}
}

// convenienceFor keeps the pairs, and the methods within them, that belong
// to the async or the sync wrapper.
func convenienceFor(pairs []*clientmodel.ConvenienceMethod, async bool) []*clientmodel.ConvenienceMethod {
	keep := func(methods []*clientmodel.ClientMethod) []*clientmodel.ClientMethod {
		var out []*clientmodel.ClientMethod
		for _, m := range methods {
			if m.Type.IsSync() != async {
				out = append(out, m)
			}
		}
		return out
	}
	var out []*clientmodel.ConvenienceMethod
	for _, p := range pairs {
		convenience := keep(p.Convenience)
		if len(convenience) == 0 {
			continue
		}
		out = append(out, &clientmodel.ConvenienceMethod{Protocol: keep(p.Protocol), Convenience: convenience})
	}
	return out
}
