// Package parser turns raw OCR text from delivery-app earnings screenshots
// into structured records.
//
// Parsing is best effort and never fails. Each field extractor is an
// independent matcher that returns nil when its pattern is absent, so a
// missing or garbled field never affects another. Absent values are
// reported as JSON null and left for a human to fill in.
//
// [Classify] decides which layout the text comes from (a single day or
// dash, or a weekly summary). [Parse] routes the text through the matching
// extractor set and reconstructs the per-offer list with
// [JoinWrappedOffers] and [ExtractOffers].
package parser
