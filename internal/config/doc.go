// Package config provides configuration management for polarizer.
//
// # Configuration File
//
// A single file configures the tool. It is looked up in this order:
//   - the path given with --config
//   - the path in the POLARIZER_TESTCASE_CONFIG environment variable
//   - ~/.polarizer/polarizer-testcase.json, .yaml or .yml
//
// When none exists, loading fails with ConfigurationNotFoundError.
//
// JSON and YAML files share one schema:
//
//	project: RHEL7
//	author: ci-bot
//	mapping: mapping.json
//	definitions-path: definitions/
//	servers:
//	  polarion:
//	    url: https://polarion.example.com
//	    user: ci-bot
//	testcase:
//	  selector:
//	    name: polarizer
//	    value: testcase_importer
//	  title:
//	    prefix: "[{{ .Project }}] "
//	transport:
//	  kind: websocket
//	  url: wss://importer.example.com/ws
//	  max-attempts: 30
//	  poll-interval: 2s
//
// Relative paths are resolved against the directory of the file.
//
// # Environment Overrides
//
// After decoding, fields tagged with env are overridden from the environment,
// e.g. POLARIZER_MAPPING, POLARIZER_DEFINITIONS_PATH, POLARIZER_PROJECT,
// IMPORTER_ENABLED, POLARIZER_TRANSPORT and POLARIZER_TRANSPORT_URL.
//
// # Validation
//
// Validate collects every problem into a ConfigurationErrorCollection so all
// of them can be reported at once.
package config
