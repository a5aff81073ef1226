// Package metadata registers test functions with their test case metadata.
//
// A Service is built once per process over the identifier mapping store, the
// definition store and the import queue:
//
//	svc, err := metadata.New(metadata.Options{
//	    Mapping:     mappingStore,
//	    Definitions: definitionStore,
//	})
//
// Each registration resolves the test identity and parameter names, builds
// one record per declared project, merges it with the definition store when a
// lookup key is given, fills default custom fields, makes sure the mapping has
// an entry for the pair and hands the record to the reconciliation engine:
//
//	reg, err := svc.Register(ctx, (*LoginSuite).TestLogin, metadata.Declaration{
//	    Definition: &testcase.Definition{
//	        Project:     testcase.Projects{"RHEL7", "RHEL8"},
//	        Title:       "Login works",
//	        Description: "Logs in with valid credentials",
//	    },
//	})
//
// Records that need a first import, or whose declaration asks for an update,
// end up in the import queue returned by Queue.
package metadata
