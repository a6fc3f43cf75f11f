package storage

import (
	"context"

	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// The table must have a string partition key "namespace" and a string sort key "key".
const (
	tablePartitionKey = "namespace"
	tableSortKey      = "key"
	tableValueAttr    = "value"
)

// DynamoDBProvider stores each value as an item whose partition key is the prefix and whose sort key is
// the client key.
type DynamoDBProvider struct {
	client  *dynamodb.Client
	table   string
	prefix  string
	loggers ldlog.Loggers
}

// NewDynamoDBProvider creates a DynamoDB client using the default AWS configuration chain, overridden by
// any region, endpoint or static credentials in dbConfig.
func NewDynamoDBProvider(
	ctx context.Context,
	dbConfig config.DynamoDBConfig,
	optFns []func(*dynamodb.Options),
	loggers ldlog.Loggers,
) (*DynamoDBProvider, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if dbConfig.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(dbConfig.Region))
	}
	if dbConfig.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(dbConfig.AccessKeyID, dbConfig.SecretAccessKey, "")))
	}
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	if dbConfig.URL.IsDefined() {
		endpoint := dbConfig.URL.String()
		optFns = append(optFns, func(o *dynamodb.Options) {
			o.EndpointResolver = dynamodb.EndpointResolverFromURL(endpoint)
		})
	}

	table := dbConfig.TableName
	if table == "" {
		table = config.DefaultDynamoDBTableName
	}
	prefix := dbConfig.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	p := &DynamoDBProvider{
		client:  dynamodb.NewFromConfig(awsConfig, optFns...),
		table:   table,
		prefix:  prefix,
		loggers: loggers,
	}
	p.loggers.SetPrefix("DynamoDBStorage:")
	p.loggers.Infof("Using DynamoDB table %s", table)
	return p, nil
}

func (p *DynamoDBProvider) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		tablePartitionKey: attrValueOfString(p.prefix),
		tableSortKey:      attrValueOfString(key),
	}
}

func (p *DynamoDBProvider) Save(ctx context.Context, key string, value []byte) error {
	item := p.itemKey(key)
	item[tableValueAttr] = attrValueOfString(string(value))
	_, err := p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.table),
		Item:      item,
	})
	return err
}

func (p *DynamoDBProvider) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := p.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(p.table),
		ConsistentRead: aws.Bool(true),
		Key:            p.itemKey(key),
	})
	if err != nil || len(result.Item) == 0 {
		return nil, err
	}
	if s, ok := result.Item[tableValueAttr].(*types.AttributeValueMemberS); ok {
		return []byte(s.Value), nil
	}
	return nil, nil
}

func attrValueOfString(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}
