// Package mcp serves explorer pages to MCP clients.
package mcp

import "github.com/modelcontextprotocol/go-sdk/jsonschema"

const (
	name         = "chainview"
	instructions = `MCP Server 'chainview' pages through the blocks of a chain and the transactions and unspent outputs of an address.

Pages are one-based and cover a fixed number of rows. Each result lists the page numbers a reader would jump to next ("pages"), always including the first and last known page.

Workflow:
1. Use 'list_blocks' to read the newest blocks. Increase 'page' to go back in time.
2. Use 'list_address_transactions' and 'list_address_outpoints' with an address taken from a transaction or given by the user.
3. When 'hasMore' is true the last page is not known yet; request the next page to continue.
`
)

func pageSchemas(allowed []int) map[string]*jsonschema.Schema {
	rows := make([]any, 0, len(allowed))
	for _, n := range allowed {
		rows = append(rows, n)
	}

	return map[string]*jsonschema.Schema{
		"page": {
			Type:        "integer",
			Description: "The one-based page number. Defaults to 1.",
		},
		"rows": {
			Type:        "integer",
			Description: "The number of rows per page. Other values use the default.",
			Enum:        rows,
		},
	}
}

func withAddress(props map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	props["address"] = &jsonschema.Schema{
		Type:        "string",
		Description: "The address to read, e.g. ecash:qz2708636snqhsxu8wnlka78h6fdp77ar59jrf5035.",
	}

	return props
}
