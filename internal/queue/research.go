package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"

	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/leaselock"
	"github.com/chasm-hq/chasm/pkg/logger"
	"github.com/chasm-hq/chasm/pkg/research"
	chasmpgx "github.com/chasm-hq/chasm/pkg/store/pgx"
)

// ResearchJobMsg asks the worker to run the research cycle for one product.
type ResearchJobMsg struct {
	ProductID     string `json:"product_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// BriefingJobMsg asks the worker to generate and store a briefing report.
type BriefingJobMsg struct {
	ProductID     string `json:"product_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

const researchLeaseTTL = 30 * time.Minute

// ProcessResearchMessage handles one research job: discover, scrape,
// extract and inject insights for the product, then queue a briefing job.
// A lease lock keyed on the product keeps concurrent workers from running
// the same product twice; a busy lock acks the message without work.
func ProcessResearchMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.AgentAIClient,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(ResearchJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	product, err := findProduct(ctx, conn, data.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		logger.Warn("[Queue] Product not found, dropping research job",
			"product_id", data.ProductID, "correlation_id", data.CorrelationID)
		return nil
	}

	pipeline := research.NewPipeline(research.PipelineParams{
		AIClient: aiClient,
		Graphs:   chasmpgx.NewGraphDBStorage(conn),
		S3Client: s3Client,
	})

	locks := leaselock.New(conn)
	err = locks.WithLease(ctx, "research:"+product.ID, leaselock.Options{TTL: researchLeaseTTL}, func(ctx context.Context) error {
		_, err := pipeline.ResearchProduct(ctx, *product)
		return err
	})
	if errors.Is(err, leaselock.ErrBusy) {
		logger.Info("[Queue] Research already running, skipping", "product_id", product.ID)
		return nil
	}
	if err != nil {
		return err
	}

	briefing, err := json.Marshal(BriefingJobMsg{
		ProductID:     product.ID,
		CorrelationID: data.CorrelationID,
	})
	if err != nil {
		return err
	}
	if err := PublishFIFO(ch, BriefingQueue, briefing); err != nil {
		logger.Error("[Queue] Failed to queue briefing job", "product_id", product.ID, "err", err)
	}

	return nil
}

// ProcessBriefingMessage generates the product's briefing report and stores
// it in S3.
func ProcessBriefingMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.AgentAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(BriefingJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	product, err := findProduct(ctx, conn, data.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		logger.Warn("[Queue] Product not found, dropping briefing job",
			"product_id", data.ProductID, "correlation_id", data.CorrelationID)
		return nil
	}

	pipeline := research.NewPipeline(research.PipelineParams{
		AIClient: aiClient,
		Graphs:   chasmpgx.NewGraphDBStorage(conn),
		S3Client: s3Client,
	})

	key, err := pipeline.PublishBriefing(ctx, *product)
	if err != nil {
		return fmt.Errorf("failed to publish briefing for %s: %w", product.ID, err)
	}

	logger.Info("[Queue] Briefing stored", "product_id", product.ID, "key", key)
	return nil
}

func findProduct(ctx context.Context, conn *pgxpool.Pool, productID string) (*knowledge.Product, error) {
	graphs := chasmpgx.NewGraphDBStorage(conn)
	products, err := graphs.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, nil
}
