/*
Package config loads the opsboard YAML configuration file.

Every field has a default, so an empty file (or no --config flag) yields a
working setup: the server listens on 127.0.0.1:3000, runs the probe command
with a 10 second cap, queries the local gateway with a 5 second cap, and the
watch client polls every 15 minutes between 06:00 and 23:00 and every three
hours overnight.

Example:

	log:
	  level: debug
	server:
	  listen: 0.0.0.0:3000
	  rate_per_second: 2
	probe:
	  command: ["openclaw", "health", "--verbose"]
	  dir: ~/.openclaw
	  timeout: 10s
	gateway:
	  url: http://127.0.0.1:18789
	  token_file: ~/.openclaw/gateway.token
	poll:
	  url: http://dashboard.local:3000
	  short_interval: 5m
	  align_to_interval: false

Loading follows a Normalize-then-Validate split: Normalize fills defaults
and expands ~ in paths, Validate reports every problem at once.
*/
package config
