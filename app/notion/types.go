package notion

// Wire types for the subset of the Notion API this tool uses: page
// creation, database retrieval/creation, and the file-upload sub-protocol.

type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

type RichText struct {
	Type string   `json:"type"`
	Text TextBody `json:"text"`
}

type TextBody struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

type Date struct {
	Start string `json:"start"`
}

type Select struct {
	Name string `json:"name"`
}

// Property is a page property value. Exactly one field is set.
type Property struct {
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	URL      *string    `json:"url,omitempty"`
	Date     *Date      `json:"date,omitempty"`
	Select   *Select    `json:"select,omitempty"`
}

// Block is one content block of a page. Exactly one payload field is set,
// matching Type.
type Block struct {
	Object    string        `json:"object"`
	Type      string        `json:"type"`
	Paragraph *RichTextBody `json:"paragraph,omitempty"`
	Quote     *RichTextBody `json:"quote,omitempty"`
	Embed     *Embed        `json:"embed,omitempty"`
	Divider   *EmptyObject  `json:"divider,omitempty"`
	Image     *Image        `json:"image,omitempty"`
}

type RichTextBody struct {
	RichText []RichText `json:"rich_text"`
}

type Embed struct {
	URL string `json:"url"`
}

type Image struct {
	Type       string            `json:"type"`
	FileUpload *FileUploadHandle `json:"file_upload,omitempty"`
}

type FileUploadHandle struct {
	ID string `json:"id"`
}

type EmptyObject struct{}

type PageRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
	Children   []Block             `json:"children,omitempty"`
}

type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SchemaProperty declares one property of a database schema. Exactly one
// field is set.
type SchemaProperty struct {
	Title    *EmptyObject  `json:"title,omitempty"`
	RichText *EmptyObject  `json:"rich_text,omitempty"`
	URL      *EmptyObject  `json:"url,omitempty"`
	Date     *EmptyObject  `json:"date,omitempty"`
	Select   *SelectSchema `json:"select,omitempty"`
}

type SelectSchema struct {
	Options []SelectOption `json:"options"`
}

type SelectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DatabaseRequest struct {
	Parent     Parent                    `json:"parent"`
	Title      []RichText                `json:"title"`
	Properties map[string]SchemaProperty `json:"properties"`
}

type Database struct {
	ID string `json:"id"`
}

type FileUpload struct {
	ID string `json:"id"`
}
