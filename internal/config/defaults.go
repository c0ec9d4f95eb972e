package config

import "github.com/flo-mic/polyglot-pm/internal/pm"

const (
	DefaultFile                   = ".polyglot-pm.json"
	DefaultPerformanceResultsFile = ".polyglot-performance.json"
	DefaultMaxPerformanceResults  = 10
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Profiles: map[pm.Manager]pm.Profile{
			pm.Bun: {
				LockFile:      "bun.lockb",
				Command:       "bun",
				UpdateCommand: "update",
				ToolRunner:    "bunx",
			},
			pm.PNPM: {
				LockFile:          "pnpm-lock.yaml",
				Command:           "pnpm",
				CacheCleanCommand: "store prune",
				ResolutionCommand: "install --lockfile-only",
				AuditCommand:      "audit",
				UpdateCommand:     "update",
				ToolRunner:        "pnpm exec",
			},
			pm.NPM: {
				LockFile:          "package-lock.json",
				Command:           "npm",
				CacheCleanCommand: "cache clean --force",
				ResolutionCommand: "install --package-lock-only",
				AuditCommand:      "audit",
				UpdateCommand:     "update",
				ToolRunner:        "npx",
			},
			pm.Yarn: {
				LockFile:          "yarn.lock",
				Command:           "yarn",
				CacheCleanCommand: "cache clean",
				ResolutionCommand: "install --frozen-lockfile",
				AuditCommand:      "audit",
				UpdateCommand:     "upgrade",
				ToolRunner:        "yarn dlx",
			},
		},
		PerformanceResultsFile: DefaultPerformanceResultsFile,
		MaxPerformanceResults:  DefaultMaxPerformanceResults,
		CITemplates: map[string]string{
			"GitHub Actions": githubActionsTemplate,
			"GitLab CI":      gitlabCITemplate,
			"CircleCI":       circleCITemplate,
			"Travis CI":      travisCITemplate,
		},
	}
}

const githubActionsTemplate = `name: CI

on: [push, pull_request]

jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Use Node.js
        uses: actions/setup-node@v4
        with:
          node-version: '{{nodeVersion}}'
      - run: {{packageManager}} install
      - run: {{packageManager}} run build --if-present
      - run: {{packageManager}} test
`

const gitlabCITemplate = `image: node:{{nodeVersion}}

stages:
  - build
  - test

cache:
  paths:
    - node_modules/

install_dependencies:
  stage: build
  script:
    - {{packageManager}} install

test:
  stage: test
  script:
    - {{packageManager}} run build --if-present
    - {{packageManager}} test
`

const circleCITemplate = `version: 2.1
jobs:
  build:
    docker:
      - image: cimg/node:{{nodeVersion}}
    steps:
      - checkout
      - run: {{packageManager}} install
      - run: {{packageManager}} run build --if-present
      - run: {{packageManager}} test
`

const travisCITemplate = `language: node_js
node_js:
  - "{{nodeVersion}}"
install:
  - {{packageManager}} install
script:
  - {{packageManager}} run build --if-present
  - {{packageManager}} test
`
