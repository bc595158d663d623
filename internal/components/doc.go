// Package components provides per-component-type progress plugins.
//
// Each component type owns the shape of its progress record. A plugin
// supplies an optional validator, a required initializer, and the merge
// strategy of every field in the record. The built-in types form a closed
// enumeration resolved by switch; types added by the host application are
// kept in a dynamic table on the Registry.
package components
