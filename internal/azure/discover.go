package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/operationalinsights/armoperationalinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/subscription/armsubscription"

	"github.com/dolly-parseton/kql-panopticon/internal/workspace"
)

// Discoverer implements workspace.Discoverer against Azure Resource
// Manager: list every subscription the credential can see, then list every
// Log Analytics workspace in each (spec §4.1). A failure enumerating one
// subscription's workspaces becomes a workspace.Warning, not a fatal error
// — the rest of discovery proceeds (spec §4.1: "non-fatal per-subscription
// warnings").
type Discoverer struct {
	cred azcore.TokenCredential
}

// NewDiscoverer builds a Discoverer from a shared credential. The same
// credential backs internal/auth.Gate; both are constructed once at
// startup from the same CredentialSource (spec §4.10 "a single credential
// shared by C1 and C2").
func NewDiscoverer(cred azcore.TokenCredential) *Discoverer {
	return &Discoverer{cred: cred}
}

// Discover implements workspace.Discoverer.
func (d *Discoverer) Discover(ctx context.Context) ([]workspace.Workspace, []workspace.Warning, error) {
	subClient, err := armsubscription.NewSubscriptionsClient(d.cred, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create subscriptions client: %w", err)
	}

	var subs []*armsubscription.Subscription
	pager := subClient.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list subscriptions: %w", err)
		}
		subs = append(subs, page.Value...)
	}

	var (
		workspaces []workspace.Workspace
		warnings   []workspace.Warning
	)

	for _, sub := range subs {
		if sub.SubscriptionID == nil {
			continue
		}
		subID := *sub.SubscriptionID
		subName := subID
		if sub.DisplayName != nil {
			subName = *sub.DisplayName
		}

		found, err := d.discoverInSubscription(ctx, subID)
		if err != nil {
			warnings = append(warnings, workspace.Warning{
				SubscriptionID:   subID,
				SubscriptionName: subName,
				Err:              err,
			})
			continue
		}
		for i := range found {
			found[i].SubscriptionID = subID
			found[i].SubscriptionName = subName
		}
		workspaces = append(workspaces, found...)
	}

	return workspaces, warnings, nil
}

func (d *Discoverer) discoverInSubscription(ctx context.Context, subscriptionID string) ([]workspace.Workspace, error) {
	client, err := armoperationalinsights.NewWorkspacesClient(subscriptionID, d.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create workspaces client: %w", err)
	}

	var out []workspace.Workspace
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list workspaces: %w", err)
		}
		for _, w := range page.Value {
			if w == nil || w.Properties == nil {
				continue
			}
			ws := workspace.Workspace{}
			if w.Name != nil {
				ws.Name = *w.Name
			}
			if w.Properties.CustomerID != nil {
				ws.ID = *w.Properties.CustomerID
			}
			if w.Location != nil {
				ws.Region = *w.Location
			}
			ws.ResourceGroupName = resourceGroupFromID(w.ID)
			if ws.ID == "" {
				continue // not yet provisioned; has no queryable workspace ID
			}
			out = append(out, ws)
		}
	}
	return out, nil
}

// resourceGroupFromID extracts the resource group segment from an ARM
// resource ID of the form
// /subscriptions/{sub}/resourceGroups/{rg}/providers/...
func resourceGroupFromID(id *string) string {
	if id == nil {
		return ""
	}
	parts := splitResourceID(*id)
	for i, p := range parts {
		if p == "resourceGroups" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func splitResourceID(id string) []string {
	var parts []string
	cur := ""
	for _, r := range id {
		if r == '/' {
			if cur != "" {
				parts = append(parts, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		parts = append(parts, cur)
	}
	return parts
}
