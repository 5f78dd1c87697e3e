// symbols/symbol_table.go - Definition and scope model entry point
//
// The package is split into focused files:
// - symbol_table_core.go: definition kinds, Definition variants, DefinitionMap
// - symbol_table_scopes.go: scope frames pushed while checking
// - symbol_table_modules.go: modules and packages
// - symbol_table_traits.go: instance relations, method definitions, upcast plans

package symbols
