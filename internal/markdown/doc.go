// Package markdown holds the Markdown to HTML converters used by the README
// block: goldmark as the primary engine, blackfriday as the optional
// alternate, and the escaped plain-text rendering used when neither can
// produce HTML.
package markdown
