// Package main provides the entry point for forkmesh-cli.
//
// forkmesh-cli drives a forkmesh-server from the shell:
//
//	forkmesh-cli fork create
//	forkmesh-cli balance set FORK_ID ADDRESS 5000000000
//	forkmesh-cli tx transfer FORK_ID --to ADDRESS --lamports 1000 --submit
//
// Settings come from ~/.forkmesh/cli.yaml, FORKMESH_CLI_* variables and
// global flags, in increasing priority.
package main
