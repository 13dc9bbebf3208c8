// Package graph mirrors each Case's officer/witness/judge actors into a
// property graph and answers "which cases share this actor" queries for
// Connection discovery during the health-check workflow. The
// get_connections tool reads the corpus store, not this package.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/pkg/circuitbreaker"
	"github.com/eliBenven/case-nexus/pkg/logger"
	"github.com/eliBenven/case-nexus/pkg/retry"
)

type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// SharedActorGroup is one cluster of cases that share a named actor
// (officer, witness, or judge) — the raw material for a shared-* Connection.
type SharedActorGroup struct {
	ActorRole   string // officer | witness | judge
	ActorName   string
	CaseNumbers []string
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	cb := circuitbreaker.NewCircuitBreaker("graph", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("graph client initialized", zap.String("uri", uri))

	return &Client{driver: driver, database: database, cb: cb, retryConfig: retryConfig}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
}

// SyncCase mirrors one case's actors as graph edges. The demo caseload
// loader does not call it, so the graph holds only cases synced through
// this method by other callers.
func (c *Client) SyncCase(ctx context.Context, cs *domain.Case) error {
	return c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.session(ctx)
			defer session.Close(ctx)

			_, err := session.Run(ctx, `
				MERGE (cs:Case {case_number: $case_number})
				SET cs.defendant = $defendant
				WITH cs
				FOREACH (o IN CASE WHEN $officer <> '' THEN [$officer] ELSE [] END |
					MERGE (a:Actor {role: 'officer', name: o})
					MERGE (cs)-[:INVOLVES]->(a))
				FOREACH (j IN CASE WHEN $judge <> '' THEN [$judge] ELSE [] END |
					MERGE (a:Actor {role: 'judge', name: j})
					MERGE (cs)-[:INVOLVES]->(a))
				FOREACH (w IN $witnesses |
					MERGE (a:Actor {role: 'witness', name: w})
					MERGE (cs)-[:INVOLVES]->(a))
			`, map[string]interface{}{
				"case_number": cs.CaseNumber,
				"defendant":   cs.Defendant,
				"officer":     cs.Officer,
				"judge":       cs.Judge,
				"witnesses":   cs.Witnesses,
			})
			if err != nil {
				return fmt.Errorf("sync case %s into graph: %w", cs.CaseNumber, err)
			}
			return nil
		})
	})
}

// SharedActors finds every actor involved in 2+ cases, the basis for
// shared-officer / shared-witness / shared-judge Connections.
func (c *Client) SharedActors(ctx context.Context) ([]SharedActorGroup, error) {
	var groups []SharedActorGroup

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.session(ctx)
			defer session.Close(ctx)

			result, err := session.Run(ctx, `
				MATCH (a:Actor)<-[:INVOLVES]-(cs:Case)
				WITH a, collect(DISTINCT cs.case_number) AS cases
				WHERE size(cases) >= 2
				RETURN a.role, a.name, cases
				ORDER BY a.role, a.name
			`, nil)
			if err != nil {
				return fmt.Errorf("query shared actors: %w", err)
			}

			groups = nil
			for result.Next(ctx) {
				record := result.Record()
				role, _ := record.Get("a.role")
				name, _ := record.Get("a.name")
				rawCases, _ := record.Get("cases")

				var caseNumbers []string
				if list, ok := rawCases.([]interface{}); ok {
					for _, v := range list {
						if s, ok := v.(string); ok {
							caseNumbers = append(caseNumbers, s)
						}
					}
				}

				groups = append(groups, SharedActorGroup{
					ActorRole:   role.(string),
					ActorName:  name.(string),
					CaseNumbers: caseNumbers,
				})
			}
			return result.Err()
		})
	})
	if err != nil {
		return nil, fmt.Errorf("shared actors: %w", err)
	}

	logger.Info("shared actor scan complete", zap.Int("groups", len(groups)))
	return groups, nil
}

// CasesSharingActor returns the shared-actor groups that include the
// given case: every other case sharing any actor with it.
func (c *Client) CasesSharingActor(ctx context.Context, caseNumber string) ([]SharedActorGroup, error) {
	groups, err := c.SharedActors(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []SharedActorGroup
	for _, g := range groups {
		for _, cn := range g.CaseNumbers {
			if cn == caseNumber {
				filtered = append(filtered, g)
				break
			}
		}
	}
	return filtered, nil
}
