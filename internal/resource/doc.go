// Package resource maps REST API resources onto typed in-process records.
//
// A resource type is declared once with Define, which takes the type's
// fields and its Options and returns the shared, per-type Metadata:
//
//	var Note = resource.MustDefine("Note", []*resource.Field{
//		resource.NewField("id", resource.ResourceID(), resource.ReadOnly()),
//		resource.NewField("title"),
//		resource.NewField("body", resource.APIName("content")),
//	}, resource.Options{RootURL: "https://api.example.com/"})
//
// Metadata carries the ordered URL templates (prepend, then the given or
// default pair, then append) and a resolver over them, the resource id
// field, the bound dispatch Engine and the cache backend.
//
// # Instances
//
// An Instance holds field values converted from wire data by each Field.
// Wire keys that match no field are kept in ExtraData. Save routes to the
// engine's update operation when the instance is persisted, pinned to a URL
// or resolvable to an update URL, and to create otherwise. With
// update-from-write enabled (the default) the engine must return the
// server's representation, which is re-applied to the instance; an empty
// response is reported as ErrEmptyResponse and leaves the fields untouched.
//
// # Dynamic schema
//
// Types defined with DynamicSchema grow their field set from observed
// response data through UpdateResourceFields. Nested mappings become
// synthesized nested resource types. This is the only path that mutates
// Metadata after Define, and it is serialized per type.
package resource
