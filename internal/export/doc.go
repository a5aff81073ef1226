// Package export turns queued test case records into import documents.
//
// One document is written per project. It wraps the project's test cases in a
// testcases element carrying the project id and the selector the remote
// importer uses to route its response:
//
//	<testcases project-id="RHEL7">
//	  <response-properties>
//	    <response-property name="polarizer" value="testcase_importer"></response-property>
//	  </response-properties>
//	  <testcase id="RHEL7-1">
//	    <title>...</title>
//	    ...
//	  </testcase>
//	</testcases>
//
// Parameters named "self" never appear in a step. Records that lack a title,
// a description or test steps are rejected and reported, never patched.
package export
