// Package azure provides the real implementations of the ports defined in
// internal/workspace, internal/queryclient, and internal/auth, against
// Azure Resource Manager and Azure Monitor Logs (spec §4.1, §4.2, §4.10).
// Every other package in this module talks to these concerns only through
// those ports; azcore/azidentity/azquery/armsubscription/
// armoperationalinsights types never leak past this package's boundary,
// following the presigner-per-cloud-provider isolation pattern in
// Yacobolo-ducklake-dataplatform's internal/service/query/presigner_azure.go.
package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/dolly-parseton/kql-panopticon/internal/auth"
)

// monitorScope is the resource scope DefaultAzureCredential requests a
// token for; Azure Monitor Logs and ARM both accept tokens issued for this
// scope in the public cloud.
const monitorScope = "https://management.azure.com/.default"

// CredentialSource adapts azidentity.DefaultAzureCredential to auth.Source,
// so internal/auth never imports azcore directly (spec §4.10).
type CredentialSource struct {
	cred *azidentity.DefaultAzureCredential
}

// NewCredentialSource builds a credential using the environment ->
// workload identity -> managed identity -> Azure CLI chain that
// DefaultAzureCredential already implements; no custom chain logic is
// written here (spec §4.10: "whatever DefaultAzureCredential resolves to
// is out of this system's control or concern").
func NewCredentialSource() (*CredentialSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create default azure credential: %w", err)
	}
	return &CredentialSource{cred: cred}, nil
}

// Cred exposes the underlying azcore.TokenCredential so callers can hand the
// same credential to NewDiscoverer and NewClient without this package
// constructing it twice (spec §4.10 "a single credential shared by C1 and
// C2").
func (c *CredentialSource) Cred() azcore.TokenCredential { return c.cred }

// Token implements auth.Source.
func (c *CredentialSource) Token(ctx context.Context) (auth.Token, error) {
	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{monitorScope}})
	if err != nil {
		return auth.Token{}, fmt.Errorf("acquire azure token: %w", err)
	}
	return auth.Token{Value: tok.Token, ExpiresOn: tok.ExpiresOn}, nil
}
