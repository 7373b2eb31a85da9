package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `courses manages a catalogue of courses.

A course has an integer id, a name and a status (scheduled, in_production, available).
Names are unique among courses that have not been deleted.

Workflow:
1) list_courses to see ids and names (deleted courses are listed too).
2) get_course for the full record; deleted courses fail with COURSE_GONE.
3) create_course / update_course / delete_course to change the catalogue.

Errors carry a code: INVALID_INPUT, DUPLICATE_NAME, CONFLICT, COURSE_NOT_FOUND, COURSE_GONE, INTERNAL.
CONFLICT means a concurrent request claimed the name first; re-check and retry if appropriate.

Docs: courses://docs/lifecycle
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "courses://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Course lifecycle",
		Description: "States a course moves through and what each operation returns in them.",
		Content: `# Course lifecycle

A course is either active or deleted. Deletion is terminal.

| Operation | Active | Deleted | Unknown id |
|---|---|---|---|
| get_course | course | COURSE_GONE | COURSE_NOT_FOUND |
| update_course | updated course | COURSE_GONE | COURSE_NOT_FOUND |
| delete_course | deleted | COURSE_GONE | COURSE_NOT_FOUND |

## Names

- A name may be held by at most one active course.
- Deleting a course frees its name for reuse.
- DUPLICATE_NAME is reported when the name was visibly taken before the write.
- CONFLICT is reported when another request took the name during the write.

## Timestamps

created_at and updated_at are UTC, formatted like 2024-01-31T13:45:00Z.
A freshly created course has equal created_at and updated_at.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
