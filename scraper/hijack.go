package scraper

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockedResourceTypes lists what a review scrape never needs. Images are
// the big one — review photos dominate the panel's bandwidth. Stylesheets
// stay enabled because element visibility checks depend on layout.
var blockedResourceTypes = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage: {},
	proto.NetworkResourceTypeFont:  {},
	proto.NetworkResourceTypeMedia: {},
}

// setupHijack installs a request interceptor on the page that drops the
// blocked resource types. The router lives for the whole session; the
// browser teardown takes it down with the page.
func setupHijack(page *rod.Page) {
	router := page.HijackRequests()

	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, blocked := blockedResourceTypes[ctx.Request.Type()]; blocked {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	go router.Run()
}
