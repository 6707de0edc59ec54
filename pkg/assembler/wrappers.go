package assembler

import (
	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// wrappers declares the public async and sync clients of sc, or of its
// method group mg when mg is not nil. The client's own wrappers are named
// after the client, a group's after its interface.
func (r *run) wrappers(sc *clientmodel.ServiceClient, mg *clientmodel.MethodGroupClient, convenience []*clientmodel.ConvenienceMethod) {
	base := sc.Name
	var group string
	if mg != nil {
		base, group = mg.InterfaceName, mg.ClassName
	}

	if r.settings.IsGenerateAsyncMethods() {
		r.model.AsyncClients = append(r.model.AsyncClients, &clientmodel.AsyncSyncClient{
			ClassName:     r.className(naming.AsyncClientName(base)),
			Package:       sc.Package,
			ServiceClient: sc.Name,
			MethodGroup:   group,
			Async:         true,
			Convenience:   convenienceFor(convenience, true),
		})
	}
	if r.settings.IsGenerateSyncMethods() {
		r.model.SyncClients = append(r.model.SyncClients, &clientmodel.AsyncSyncClient{
			ClassName:     r.className(naming.SyncClientName(base)),
			Package:       sc.Package,
			ServiceClient: sc.Name,
			MethodGroup:   group,
			Convenience:   convenienceFor(convenience, false),
		})
	}
}
