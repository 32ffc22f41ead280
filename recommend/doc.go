// Package recommend ranks classification-code candidates for a product
// description.
//
// Two pipelines are exposed. The basic pipeline formats hybrid retrieval
// results, optionally blending in an advisor rating of the leaders. The
// ultimate pipeline unions an independent advisor proposal with retrieval,
// blends the two signals by confidence tier, re-ranks the leading
// candidates and promotes high-confidence proposals. Advisor failures
// degrade individual stages rather than failing the request, so a full
// advisor outage reduces the ultimate pipeline to the basic one.
package recommend
