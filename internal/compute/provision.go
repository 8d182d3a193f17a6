// Package compute provisions the AWS side of Numerai Compute: a container
// image built by CodeBuild, pushed to ECR and run as a Lambda function
// that is triggered by the model's submission webhook.
package compute

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	cbtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Resource names shared by every deployment in an account.
const (
	ecrRepoName          = "numerai-compute-lambda-image"
	codebuildRoleName    = "codebuild-numerai-container-role"
	codebuildPolicyName  = "codebuild-numerai-container-policy"
	lambdaRoleName       = "numerai-compute-lambda-execution-role"
	lambdaPolicyName     = "numerai-compute-lambda-execution-policy"
	secretName           = "numerai-api-keys"
	baseImage            = "public.ecr.aws/lambda/python:3.9"
	codebuildImage       = "aws/codebuild/standard:4.0"
	computeLiteSourceURL = "https://raw.githubusercontent.com/numerai/compute-lite/master"
)

// The service clients the provisioner needs, one narrow interface per
// service so tests can fake them.

type S3API interface {
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ECRAPI interface {
	CreateRepository(ctx context.Context, in *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
	DescribeRepositories(ctx context.Context, in *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
}

type CodeBuildAPI interface {
	CreateProject(ctx context.Context, in *codebuild.CreateProjectInput, optFns ...func(*codebuild.Options)) (*codebuild.CreateProjectOutput, error)
	DeleteProject(ctx context.Context, in *codebuild.DeleteProjectInput, optFns ...func(*codebuild.Options)) (*codebuild.DeleteProjectOutput, error)
	StartBuild(ctx context.Context, in *codebuild.StartBuildInput, optFns ...func(*codebuild.Options)) (*codebuild.StartBuildOutput, error)
	BatchGetBuilds(ctx context.Context, in *codebuild.BatchGetBuildsInput, optFns ...func(*codebuild.Options)) (*codebuild.BatchGetBuildsOutput, error)
}

type IAMAPI interface {
	CreateRole(ctx context.Context, in *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	GetRole(ctx context.Context, in *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	CreatePolicy(ctx context.Context, in *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	DeletePolicy(ctx context.Context, in *iam.DeletePolicyInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyOutput, error)
	DetachRolePolicy(ctx context.Context, in *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error)
	AttachRolePolicy(ctx context.Context, in *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	ListPolicyVersions(ctx context.Context, in *iam.ListPolicyVersionsInput, optFns ...func(*iam.Options)) (*iam.ListPolicyVersionsOutput, error)
	DeletePolicyVersion(ctx context.Context, in *iam.DeletePolicyVersionInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyVersionOutput, error)
}

type LambdaAPI interface {
	CreateFunction(ctx context.Context, in *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, in *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
}

type SecretsAPI interface {
	DescribeSecret(ctx context.Context, in *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
	CreateSecret(ctx context.Context, in *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

type LogsAPI interface {
	GetLogEvents(ctx context.Context, in *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Provisioner creates or reuses the per-account AWS resources. Every
// MaybeCreate* call is idempotent: create first, and on failure fall
// back to retrieving or recreating the resource.
type Provisioner struct {
	s3      S3API
	ecr     ECRAPI
	build   CodeBuildAPI
	iam     IAMAPI
	lambda  LambdaAPI
	secrets SecretsAPI
	logs    LogsAPI
	sts     STSAPI

	region     string
	httpClient *http.Client
	logger     *slog.Logger
	stdout     io.Writer

	// injectable clock, for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// New builds a Provisioner from the default AWS credential chain.
func New(ctx context.Context, logger *slog.Logger) (*Provisioner, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	// builds take a while, don't let transient throttles kill the wait
	logsCfg := cfg.Copy()
	logsCfg.RetryMaxAttempts = 15

	p := &Provisioner{
		s3:      s3.NewFromConfig(cfg),
		ecr:     ecr.NewFromConfig(cfg),
		build:   codebuild.NewFromConfig(cfg),
		iam:     iam.NewFromConfig(cfg),
		lambda:  lambda.NewFromConfig(cfg),
		secrets: secretsmanager.NewFromConfig(cfg),
		logs:    cloudwatchlogs.NewFromConfig(logsCfg),
		sts:     sts.NewFromConfig(cfg),

		region:     cfg.Region,
		httpClient: &http.Client{},
		logger:     logger,
		stdout:     os.Stdout,
		now:        time.Now,
		sleep:      time.Sleep,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// AccountID resolves the AWS account id of the active credentials.
func (p *Provisioner) AccountID(ctx context.Context) (string, error) {
	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// MaybeCreateBucket creates the per-account compute bucket, tolerating an
// already existing one. Returns the bucket name.
func (p *Provisioner) MaybeCreateBucket(ctx context.Context, accountID string) (string, error) {
	bucket := fmt.Sprintf("numerai-compute-%s", accountID)
	_, err := p.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
		CreateBucketConfiguration: &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(p.region),
		},
	})
	if err != nil {
		// create is effectively idempotent for our own bucket
		p.logger.Debug("create bucket", "bucket", bucket, "err", err)
	}
	return bucket, nil
}

// UploadToS3 stores a local file under the model's prefix in the compute
// bucket.
func (p *Provisioner) UploadToS3(ctx context.Context, bucket, modelID, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s", modelID, filePath)
	_, err = p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", filePath, bucket, key, err)
	}
	return nil
}

// MaybeCreateZipFile assembles the CodeBuild source zip: the Dockerfile,
// buildspec and entrypoint fetched from the compute-lite repository, plus
// the user's requirements.txt from the working directory when present.
// The zip is uploaded to the compute bucket and its key returned.
func (p *Provisioner) MaybeCreateZipFile(ctx context.Context, bucket, modelID string) (string, error) {
	key := fmt.Sprintf("codebuild-container-%s.zip", modelID)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"Dockerfile", "buildspec.yml", "entry.sh"} {
		content, err := p.fetchSourceFile(ctx, name)
		if err != nil {
			return "", err
		}
		w, err := zw.Create(name)
		if err != nil {
			return "", fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := w.Write(content); err != nil {
			return "", fmt.Errorf("zip %s: %w", name, err)
		}
	}
	if reqs, err := os.ReadFile("requirements.txt"); err == nil {
		p.logger.Info("found requirements.txt, including it in the build")
		w, err := zw.Create("requirements.txt")
		if err != nil {
			return "", fmt.Errorf("zip requirements.txt: %w", err)
		}
		if _, err := w.Write(reqs); err != nil {
			return "", fmt.Errorf("zip requirements.txt: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalize zip: %w", err)
	}

	_, err := p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return "", fmt.Errorf("upload codebuild zip: %w", err)
	}
	p.logger.Info("uploaded codebuild zip", "location", fmt.Sprintf("s3://%s/%s", bucket, key))
	return key, nil
}

func (p *Provisioner) fetchSourceFile(ctx context.Context, name string) ([]byte, error) {
	url := computeLiteSourceURL + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", name, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// MaybeCreateECRRepo creates the shared image repository, or retrieves it
// when it already exists.
func (p *Provisioner) MaybeCreateECRRepo(ctx context.Context) (*ecrtypes.Repository, error) {
	created, err := p.ecr.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(ecrRepoName),
	})
	if err == nil {
		p.logger.Info("created ecr repository", "name", ecrRepoName)
		return created.Repository, nil
	}
	p.logger.Info("ecr repository exists, retrieving", "name", ecrRepoName)
	described, err := p.ecr.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{ecrRepoName},
	})
	if err != nil {
		return nil, fmt.Errorf("describe ecr repository %s: %w", ecrRepoName, err)
	}
	if len(described.Repositories) == 0 {
		return nil, fmt.Errorf("ecr repository %s not found", ecrRepoName)
	}
	return &described.Repositories[0], nil
}

// CreateOrGetRole creates an IAM role, or retrieves it when it already
// exists.
func (p *Provisioner) CreateOrGetRole(ctx context.Context, name, assumeRolePolicy, description string) (*iamtypes.Role, error) {
	created, err := p.iam.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(assumeRolePolicy),
		Description:              aws.String(description),
	})
	if err == nil {
		return created.Role, nil
	}
	p.logger.Info("role exists, retrieving", "name", name)
	got, err := p.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("get role %s: %w", name, err)
	}
	return got.Role, nil
}

// MaybeCreatePolicyAndAttachRole creates a policy and attaches it to the
// role. When the policy already exists it is detached, its non-default
// versions dropped, deleted and recreated, so document changes take
// effect.
func (p *Provisioner) MaybeCreatePolicyAndAttachRole(ctx context.Context, name, document, accountID string, role *iamtypes.Role) error {
	policy, err := p.iam.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(document),
	})
	if err != nil {
		p.logger.Info("policy exists, recreating", "name", name)
		arn := fmt.Sprintf("arn:aws:iam::%s:policy/%s", accountID, name)
		if _, err := p.iam.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
			RoleName:  role.RoleName,
			PolicyArn: aws.String(arn),
		}); err != nil {
			p.logger.Debug("policy already detached", "arn", arn)
		}
		versions, err := p.iam.ListPolicyVersions(ctx, &iam.ListPolicyVersionsInput{
			PolicyArn: aws.String(arn),
		})
		if err != nil {
			return fmt.Errorf("list policy versions for %s: %w", arn, err)
		}
		for _, v := range versions.Versions {
			if v.IsDefaultVersion {
				continue
			}
			if _, err := p.iam.DeletePolicyVersion(ctx, &iam.DeletePolicyVersionInput{
				PolicyArn: aws.String(arn),
				VersionId: v.VersionId,
			}); err != nil {
				return fmt.Errorf("delete policy version %s of %s: %w", aws.ToString(v.VersionId), arn, err)
			}
		}
		if _, err := p.iam.DeletePolicy(ctx, &iam.DeletePolicyInput{PolicyArn: aws.String(arn)}); err != nil {
			return fmt.Errorf("delete policy %s: %w", arn, err)
		}
		policy, err = p.iam.CreatePolicy(ctx, &iam.CreatePolicyInput{
			PolicyName:     aws.String(name),
			PolicyDocument: aws.String(document),
		})
		if err != nil {
			return fmt.Errorf("recreate policy %s: %w", name, err)
		}
	}

	_, err = p.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  role.RoleName,
		PolicyArn: policy.Policy.Arn,
	})
	if err != nil {
		return fmt.Errorf("attach policy %s to role %s: %w", name, aws.ToString(role.RoleName), err)
	}
	return nil
}

// MaybeCreateCodebuildProject creates the build project for the image, or
// deletes and recreates it when creation fails, so configuration changes
// take effect. Returns the project name.
func (p *Provisioner) MaybeCreateCodebuildProject(ctx context.Context, accountID, bucket, zipKey, modelID string) (string, error) {
	role, err := p.CreateOrGetRole(ctx, codebuildRoleName,
		codebuildAssumeRolePolicy, "Codebuild role created for Numerai Compute")
	if err != nil {
		return "", err
	}

	projectName := fmt.Sprintf("build-%s", ecrRepoName)
	policyDoc := codebuildPolicyDocument(accountID, modelID, projectName, p.region)
	if err := p.MaybeCreatePolicyAndAttachRole(ctx, codebuildPolicyName, policyDoc, accountID, role); err != nil {
		return "", err
	}

	input := &codebuild.CreateProjectInput{
		Name:        aws.String(projectName),
		Description: aws.String(fmt.Sprintf("Build the container %s for Numerai Compute", ecrRepoName)),
		Source: &cbtypes.ProjectSource{
			Type:     cbtypes.SourceTypeS3,
			Location: aws.String(fmt.Sprintf("%s/%s", bucket, zipKey)),
		},
		Artifacts: &cbtypes.ProjectArtifacts{Type: cbtypes.ArtifactsTypeNoArtifacts},
		Environment: &cbtypes.ProjectEnvironment{
			Type:           cbtypes.EnvironmentTypeLinuxContainer,
			Image:          aws.String(codebuildImage),
			ComputeType:    cbtypes.ComputeTypeBuildGeneral1Small,
			PrivilegedMode: aws.Bool(true),
			EnvironmentVariables: []cbtypes.EnvironmentVariable{
				{Name: aws.String("AWS_DEFAULT_REGION"), Value: aws.String(p.region)},
				{Name: aws.String("AWS_ACCOUNT_ID"), Value: aws.String(accountID)},
				{Name: aws.String("IMAGE_REPO_NAME"), Value: aws.String(ecrRepoName)},
				{Name: aws.String("IMAGE_TAG"), Value: aws.String("latest")},
				{Name: aws.String("BASE_IMAGE"), Value: aws.String(baseImage)},
			},
		},
		ServiceRole: role.Arn,
	}

	if _, err := p.build.CreateProject(ctx, input); err != nil {
		p.logger.Info("unable to create project, deleting and recreating", "name", projectName)
		if _, err := p.build.DeleteProject(ctx, &codebuild.DeleteProjectInput{Name: aws.String(projectName)}); err != nil {
			return "", fmt.Errorf("delete codebuild project %s: %w", projectName, err)
		}
		if _, err := p.build.CreateProject(ctx, input); err != nil {
			return "", fmt.Errorf("recreate codebuild project %s: %w", projectName, err)
		}
	}
	return projectName, nil
}

// StartBuild starts a build of the project and returns the build id.
func (p *Provisioner) StartBuild(ctx context.Context, projectName string) (string, error) {
	out, err := p.build.StartBuild(ctx, &codebuild.StartBuildInput{
		ProjectName: aws.String(projectName),
	})
	if err != nil {
		return "", fmt.Errorf("start build of %s: %w", projectName, err)
	}
	return aws.ToString(out.Build.Id), nil
}

// WaitForBuild polls until the build leaves IN_PROGRESS and returns its
// final status.
func (p *Provisioner) WaitForBuild(ctx context.Context, buildID string, poll time.Duration) (string, error) {
	for {
		out, err := p.build.BatchGetBuilds(ctx, &codebuild.BatchGetBuildsInput{Ids: []string{buildID}})
		if err != nil {
			return "", fmt.Errorf("get build %s: %w", buildID, err)
		}
		if len(out.Builds) == 0 {
			return "", fmt.Errorf("build %s not found", buildID)
		}
		status := string(out.Builds[0].BuildStatus)
		if status != string(cbtypes.StatusTypeInProgress) {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		p.sleep(poll)
	}
}

// MaybeBuildContainer runs a build to completion, tailing its CloudWatch
// logs when tail is set.
func (p *Provisioner) MaybeBuildContainer(ctx context.Context, projectName string, tail bool) error {
	buildID, err := p.StartBuild(ctx, projectName)
	if err != nil {
		return err
	}
	p.logger.Info("build started", "id", buildID)
	if tail {
		return p.LogsForBuild(ctx, buildID, true, 10*time.Second)
	}
	status, err := p.WaitForBuild(ctx, buildID, 10*time.Second)
	if err != nil {
		return err
	}
	p.logger.Info("build complete", "status", status)
	if status != string(cbtypes.StatusTypeSucceeded) {
		return fmt.Errorf("build %s finished with status %s", buildID, status)
	}
	return nil
}

// MaybeCreateSecret stores the API credential pair in Secrets Manager,
// unless the secret already exists.
func (p *Provisioner) MaybeCreateSecret(ctx context.Context, publicID, secretKey string) error {
	if _, err := p.secrets.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(secretName),
	}); err == nil {
		return nil
	}
	p.logger.Info("secret not found, creating", "name", secretName)
	payload, err := json.Marshal(map[string]string{
		"public_id":  publicID,
		"secret_key": secretKey,
	})
	if err != nil {
		return fmt.Errorf("encode secret: %w", err)
	}
	_, err = p.secrets.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(secretName),
		SecretString: aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("create secret %s: %w", secretName, err)
	}
	return nil
}

// MaybeCreateLambdaFunction creates the submit function from the latest
// image, or points the existing function at it. Returns the execution
// role ARN and the function name.
func (p *Provisioner) MaybeCreateLambdaFunction(ctx context.Context, modelName string, repo *ecrtypes.Repository, bucket, accountID, externalID string) (string, string, error) {
	role, err := p.CreateOrGetRole(ctx, lambdaRoleName,
		lambdaAssumeRolePolicy(externalID), "Lambda execution role created for Numerai Compute")
	if err != nil {
		return "", "", err
	}

	functionName := fmt.Sprintf("numerai-compute-%s-submit", strings.ReplaceAll(modelName, "_", "-"))
	policyDoc := lambdaPolicyDocument(accountID, bucket, functionName, p.region)
	if err := p.MaybeCreatePolicyAndAttachRole(ctx, lambdaPolicyName, policyDoc, accountID, role); err != nil {
		return "", "", err
	}

	imageURI := fmt.Sprintf("%s:latest", aws.ToString(repo.RepositoryUri))
	_, err = p.lambda.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(functionName),
		PackageType:  lambdatypes.PackageTypeImage,
		Code:         &lambdatypes.FunctionCode{ImageUri: aws.String(imageURI)},
		Role:         role.Arn,
		MemorySize:   aws.Int32(512),
		Timeout:      aws.Int32(300),
	})
	if err != nil {
		p.logger.Info("unable to create function, updating to latest image", "name", functionName)
		if _, err := p.lambda.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
			FunctionName: aws.String(functionName),
			ImageUri:     aws.String(imageURI),
		}); err != nil {
			return "", "", fmt.Errorf("update function %s: %w", functionName, err)
		}
	}
	return aws.ToString(role.Arn), functionName, nil
}

// DeployInput names everything a full deployment needs.
type DeployInput struct {
	ModelID    string
	ModelName  string
	PublicID   string
	SecretKey  string
	ExternalID string
	TailLogs   bool
}

// Deploy runs the whole provisioning pipeline: bucket, build source zip,
// image repository, CodeBuild project, container build, credential secret
// and the Lambda function.
func (p *Provisioner) Deploy(ctx context.Context, in DeployInput) (string, error) {
	accountID, err := p.AccountID(ctx)
	if err != nil {
		return "", err
	}
	bucket, err := p.MaybeCreateBucket(ctx, accountID)
	if err != nil {
		return "", err
	}
	zipKey, err := p.MaybeCreateZipFile(ctx, bucket, in.ModelID)
	if err != nil {
		return "", err
	}
	repo, err := p.MaybeCreateECRRepo(ctx)
	if err != nil {
		return "", err
	}
	projectName, err := p.MaybeCreateCodebuildProject(ctx, accountID, bucket, zipKey, in.ModelID)
	if err != nil {
		return "", err
	}
	if err := p.MaybeBuildContainer(ctx, projectName, in.TailLogs); err != nil {
		return "", err
	}
	if err := p.MaybeCreateSecret(ctx, in.PublicID, in.SecretKey); err != nil {
		return "", err
	}
	_, functionName, err := p.MaybeCreateLambdaFunction(ctx, in.ModelName, repo, bucket, accountID, in.ExternalID)
	if err != nil {
		return "", err
	}
	p.logger.Info("deployment complete", "function", functionName)
	return functionName, nil
}
