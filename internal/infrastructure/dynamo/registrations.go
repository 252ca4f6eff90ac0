package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/biteguide-api/internal/domain"
)

// RegistrationRepo persists onboarding records. Stage changes are guarded by a
// conditional update so concurrent writers cannot move a record backwards.
type RegistrationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRegistrationRepo(client *dynamodb.Client, tableName string) *RegistrationRepo {
	return &RegistrationRepo{client: client, tableName: tableName}
}

// Create inserts reg unless a record for the same user already exists.
func (r *RegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	item, err := attributevalue.MarshalMap(reg)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldUserID},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("create registration: %w", domain.ErrConflict)
	}
	return err
}

func (r *RegistrationRepo) Get(ctx context.Context, userID string) (*domain.Registration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("registration not found: %w", domain.ErrNotFound)
	}
	var reg domain.Registration
	if err := attributevalue.UnmarshalMap(out.Item, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Save writes reg's stage, profile and preferences only while the stored stage
// still equals expected and returns the record as persisted. A lost race yields
// ErrStageLocked.
func (r *RegistrationRepo) Save(ctx context.Context, reg *domain.Registration, expected domain.Stage) (*domain.Registration, error) {
	updates := map[string]interface{}{
		fieldStage:     reg.Stage,
		fieldUpdatedAt: reg.UpdatedAt,
	}
	if reg.Profile != nil {
		updates[fieldProfile] = reg.Profile
	}
	if reg.Preferences != nil {
		updates[fieldPreferences] = reg.Preferences
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	ue.Names["#cond_stage"] = fieldStage
	ue.Values[":cond_stage"] = &types.AttributeValueMemberS{Value: string(expected)}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, reg.UserID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#cond_stage = :cond_stage"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("save registration: %w", domain.ErrStageLocked)
		}
		return nil, err
	}
	var saved domain.Registration
	if err := attributevalue.UnmarshalMap(out.Attributes, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
