// Package config provides configuration management for bsprep.
//
// Two sources feed a run:
//
//   - Config, loaded from YAML files and merged in layers:
//     built-in defaults, then ~/.config/bsprep/config.yaml, then
//     ./.bsprep/config.yaml. LoadConfigFromPath replaces the file layers with a
//     single explicit file.
//   - Environment, read once from environment variables: credentials, the
//     build name override, rerun lists, and the variables used to detect a CI
//     provider.
//
// # Configuration Structure
//
//	user: alice
//	app:
//	  path: ./build/app-debug.apk
//	  custom_id: MyApp
//	buildIdentifier: "#${BUILD_NUMBER}"
//	browserstackLocal: true
//	forcedStop: false
//	opts:
//	  localIdentifier: checkout-tests
//	  forceLocal: true
//	tunnel:
//	  binary: /usr/local/bin/BrowserStackLocal
//	  startTimeout: 60s
//	upload:
//	  retries: 2
//	logging:
//	  level: debug
//	  format: json
//
// Nothing in this package reads the process environment except
// LoadEnvironment, so the rest of the code base can be tested with explicit
// values.
package config
