// Package plan computes the projection plan of a query: which document paths
// the resolved schema needs, whether the store may be asked to return only
// those, and whether the caller's own source filter would drop any of them.
//
// Planning runs once per query, before the first request:
//  1. Walk the schema. Named non-any leaves contribute their document path.
//     Any dynamic (any) node makes the plan a superset plan.
//  2. Without a caller filter, push down the required paths of an exact plan
//     and nothing for a superset plan.
//  3. With a caller filter, an exact plan fails unless the filter covers every
//     required path, and a superset plan always fails.
package plan
