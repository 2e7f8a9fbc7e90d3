// Package domain holds the entities that flow through the résumé-to-outreach
// pipeline: the ingested payload, the extracted profile, discovered job
// postings and the per-job dispatch outcome. The types carry no
// infrastructure concerns and are shared by every other package.
package domain
