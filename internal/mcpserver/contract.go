package mcpserver

// DraftFormatContract describes the canonical draft document shape that
// LLM consumers should follow when creating or editing drafts.
const DraftFormatContract = `# Dagaz Draft Document Contract

Every draft stored in Dagaz follows this JSON structure.

## Structure

` + "```" + `json
{
  "id": "uuid",
  "title": "Human-readable title",
  "overview": "One-paragraph summary of the story",
  "category": "politics",
  "subcategory": "elections",
  "tags": ["climate-policy", "senate"],
  "status": "draft",
  "timeline": [
    {
      "id": "uuid",
      "type": "event",
      "date": "2024-11-05",
      "event": "Polls close on the East Coast",
      "description": "First results begin to arrive.",
      "significance": 3,
      "sources": [
        {"title": "...", "link": "https://...", "sourceName": "Reuters", "provider": "feed"}
      ]
    },
    {
      "id": "uuid",
      "type": "image",
      "url": "/media/abcd1234-chart.png",
      "caption": "Electoral map at midnight",
      "credit": "AP"
    }
  ]
}
` + "```" + `

## Rules

1. **Status** is one of ` + "`" + `draft` + "`" + `, ` + "`" + `review` + "`" + `, ` + "`" + `published` + "`" + `.
2. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `climate-policy` + "`" + `). Free text
   passed to create_draft is normalized automatically.
3. **Timeline blocks** carry a ` + "`" + `type` + "`" + ` discriminator: ` + "`" + `event` + "`" + ` or
   ` + "`" + `image` + "`" + `. Older documents may contain event blocks without the
   discriminator; they are still events.
4. **Significance** is an integer from 1 (minor) to 3 (major). Anything
   else is coerced to 2.
5. **Dates** use ISO format (YYYY-MM-DD) and may be empty when unknown.
6. **Image URLs** reference the media store (` + "`" + `/media/filename` + "`" + `). Upload
   files first with the upload_media tool; never link external images directly.

## Media

- Upload via the ` + "`" + `upload_media` + "`" + ` tool. It returns the ` + "`" + `/media/` + "`" + ` URL to
  use in an image block.
- Supported formats: png, jpg, jpeg, gif, webp, svg.
- Files live flat in the media store (no sub-folders).
`
